package mail

import (
	"context"
	"fmt"
	"strings"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/metrics"

	"github.com/sirupsen/logrus"
)

const (
	KindReviewSubmitted = "review_submitted"
	KindReviewApproved  = "review_approved"
	KindReviewRejected  = "review_rejected"
)

// Notifier собирает письма о модерации отзывов. Ошибки отправки
// только логируются и не прерывают вызывающую операцию.
type Notifier struct {
	mailer  Mailer
	siteURL string
}

func NewNotifier(m Mailer, siteURL string) *Notifier {
	return &Notifier{mailer: m, siteURL: strings.TrimRight(siteURL, "/")}
}

func (n *Notifier) hostingURL(h *ds.Hosting) string {
	if h == nil {
		return n.siteURL + "/"
	}
	return n.siteURL + "/hostings/" + h.Slug
}

func hostingName(h *ds.Hosting) string {
	if h == nil {
		return "хостинг"
	}
	return h.Name
}

// ReviewSubmitted уведомляет модераторов о новом отзыве.
func (n *Notifier) ReviewSubmitted(ctx context.Context, staff []string, review *ds.Review) {
	if len(staff) == 0 {
		return
	}
	msg := Message{
		To:      staff,
		Subject: fmt.Sprintf("Новый отзыв на модерации: %s", hostingName(review.Hosting)),
		Body: fmt.Sprintf("Автор: %s\nОценка: %d\n\n%s\n\nОтзыв #%d ожидает модерации.",
			review.AuthorName, review.Rating, review.Content, review.ID),
	}
	n.send(ctx, KindReviewSubmitted, msg)
}

func (n *Notifier) ReviewApproved(ctx context.Context, review *ds.Review) {
	if review.AuthorEmail == "" {
		return
	}
	msg := Message{
		To:      []string{review.AuthorEmail},
		Subject: "Ваш отзыв опубликован",
		Body: fmt.Sprintf("Здравствуйте, %s!\n\nВаш отзыв о %s прошёл модерацию и опубликован:\n%s",
			review.AuthorName, hostingName(review.Hosting), n.hostingURL(review.Hosting)),
	}
	n.send(ctx, KindReviewApproved, msg)
}

func (n *Notifier) ReviewRejected(ctx context.Context, review *ds.Review) {
	if review.AuthorEmail == "" {
		return
	}
	reason := review.RejectionReason
	if reason == "" {
		reason = "не указана"
	}
	msg := Message{
		To:      []string{review.AuthorEmail},
		Subject: "Ваш отзыв отклонён",
		Body: fmt.Sprintf("Здравствуйте, %s!\n\nВаш отзыв о %s не прошёл модерацию.\nПричина: %s",
			review.AuthorName, hostingName(review.Hosting), reason),
	}
	n.send(ctx, KindReviewRejected, msg)
}

func (n *Notifier) send(ctx context.Context, kind string, msg Message) {
	err := n.mailer.Send(ctx, msg)
	metrics.ObserveMail(kind, err)
	if err != nil {
		logrus.WithError(err).WithField("kind", kind).Error("mail send failed")
	}
}
