package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hostcompare/internal/api"

	"github.com/sirupsen/logrus"
)

// @title HostCompare API
// @version 1.0
// @description Каталог и сравнение хостингов, отзывы и CRM для их модерации.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logrus.Info("App start")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// повторный сигнал завершает процесс сразу
		<-ctx.Done()
		stop()
	}()

	if err := api.StartServer(ctx); err != nil {
		logrus.Fatal(err)
	}
	logrus.Info("App terminated")
}
