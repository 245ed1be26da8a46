package handler

import (
	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/dto"
)

// ============ ds -> dto ============

func holdingResponse(h *ds.Holding) *dto.HoldingResponse {
	if h == nil {
		return nil
	}
	return &dto.HoldingResponse{ID: h.ID, Name: h.Name, Slug: h.Slug}
}

func cityResponse(c *ds.City) *dto.CityResponse {
	if c == nil {
		return nil
	}
	return &dto.CityResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, Region: c.Region}
}

func (h *APIHandler) hostingResponse(hosting *ds.Hosting) dto.HostingResponse {
	return dto.HostingResponse{
		ID:          hosting.ID,
		Name:        hosting.Name,
		Slug:        hosting.Slug,
		Description: hosting.Description,
		WebsiteURL:  hosting.WebsiteURL,
		LogoURL:     h.fileURL(hosting.LogoURL),
		HoldingID:   hosting.HoldingID,
		Holding:     holdingResponse(hosting.Holding),
		IsPublished: hosting.IsPublished,
		Rating:      hosting.Rating,
		ReviewCount: hosting.ReviewCount,
		CreatedAt:   hosting.CreatedAt,
		UpdatedAt:   hosting.UpdatedAt,
	}
}

func (h *APIHandler) hostingResponses(hostings []ds.Hosting) []dto.HostingResponse {
	out := make([]dto.HostingResponse, 0, len(hostings))
	for i := range hostings {
		out = append(out, h.hostingResponse(&hostings[i]))
	}
	return out
}

func referenceResponses[T any](items []T, project func(T) ds.ReferenceItem) []dto.ReferenceResponse {
	out := make([]dto.ReferenceResponse, 0, len(items))
	for _, it := range items {
		ref := project(it)
		out = append(out, dto.ReferenceResponse{ID: ref.ID, Name: ref.Name, Slug: ref.Slug})
	}
	return out
}

func tariffReferences(t *ds.Tariff) map[string][]dto.ReferenceResponse {
	return map[string][]dto.ReferenceResponse{
		"cms": referenceResponses(t.CMS, func(v ds.CMS) ds.ReferenceItem {
			return ds.ReferenceItem{ID: v.ID, Name: v.Name, Slug: v.Slug}
		}),
		"control-panels": referenceResponses(t.ControlPanels, func(v ds.ControlPanel) ds.ReferenceItem {
			return ds.ReferenceItem{ID: v.ID, Name: v.Name, Slug: v.Slug}
		}),
		"countries": referenceResponses(t.Countries, func(v ds.Country) ds.ReferenceItem {
			return ds.ReferenceItem{ID: v.ID, Name: v.Name, Slug: v.Slug}
		}),
		"data-stores": referenceResponses(t.DataStores, func(v ds.DataStore) ds.ReferenceItem {
			return ds.ReferenceItem{ID: v.ID, Name: v.Name, Slug: v.Slug}
		}),
		"operation-systems": referenceResponses(t.OperationSystems, func(v ds.OperationSystem) ds.ReferenceItem {
			return ds.ReferenceItem{ID: v.ID, Name: v.Name, Slug: v.Slug}
		}),
		"programming-languages": referenceResponses(t.ProgrammingLanguages, func(v ds.ProgrammingLanguage) ds.ReferenceItem {
			return ds.ReferenceItem{ID: v.ID, Name: v.Name, Slug: v.Slug}
		}),
	}
}

func tariffResponse(t *ds.Tariff) dto.TariffResponse {
	resp := dto.TariffResponse{
		ID:          t.ID,
		HostingID:   t.HostingID,
		Name:        t.Name,
		Price:       t.Price,
		Period:      t.Period,
		DiskGB:      t.DiskGB,
		BandwidthGB: t.BandwidthGB,
		Websites:    t.Websites,
		IsActive:    t.IsActive,
		References:  tariffReferences(t),
	}
	if t.Hosting != nil {
		resp.HostingName = t.Hosting.Name
		resp.HostingSlug = t.Hosting.Slug
	}
	return resp
}

func tariffResponses(tariffs []ds.Tariff) []dto.TariffResponse {
	out := make([]dto.TariffResponse, 0, len(tariffs))
	for i := range tariffs {
		out = append(out, tariffResponse(&tariffs[i]))
	}
	return out
}

func referenceItemResponses(items []ds.ReferenceItem) []dto.ReferenceResponse {
	return referenceResponses(items, func(v ds.ReferenceItem) ds.ReferenceItem { return v })
}

func reviewResponse(r *ds.Review) dto.ReviewResponse {
	resp := dto.ReviewResponse{
		ID:              r.ID,
		HostingID:       r.HostingID,
		UserID:          r.UserID,
		AuthorName:      r.AuthorName,
		AuthorEmail:     r.AuthorEmail,
		Rating:          r.Rating,
		Pros:            r.Pros,
		Cons:            r.Cons,
		Content:         r.Content,
		Status:          r.Status,
		ModeratorID:     r.ModeratorID,
		ModeratedAt:     r.ModeratedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
	}
	if r.Hosting != nil {
		resp.HostingName = r.Hosting.Name
	}
	return resp
}

func reviewResponses(reviews []ds.Review) []dto.ReviewResponse {
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, reviewResponse(&reviews[i]))
	}
	return out
}

func publicReviewResponses(reviews []ds.Review) []dto.PublicReviewResponse {
	out := make([]dto.PublicReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, dto.PublicReviewResponse{
			ID:         r.ID,
			AuthorName: r.AuthorName,
			Rating:     r.Rating,
			Pros:       r.Pros,
			Cons:       r.Cons,
			Content:    r.Content,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out
}

func categoryResponse(c *ds.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
	}
}

func categoryResponses(categories []ds.Category) []dto.CategoryResponse {
	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, *categoryResponse(&categories[i]))
	}
	return out
}

func (h *APIHandler) productResponse(p *ds.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Category:    categoryResponse(p.Category),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    h.fileURL(p.ImageURL),
		IsActive:    p.IsActive,
	}
}

func (h *APIHandler) productResponses(products []ds.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, h.productResponse(&products[i]))
	}
	return out
}

func (h *APIHandler) dealerResponse(d *ds.Dealer) dto.DealerResponse {
	resp := dto.DealerResponse{
		ID:         d.ID,
		Name:       d.Name,
		Email:      d.Email,
		Phone:      d.Phone,
		WebsiteURL: d.WebsiteURL,
		CityID:     d.CityID,
		City:       cityResponse(d.City),
	}
	if len(d.Products) > 0 {
		resp.Products = h.productResponses(d.Products)
	}
	return resp
}

func (h *APIHandler) dealerResponses(dealers []ds.Dealer) []dto.DealerResponse {
	out := make([]dto.DealerResponse, 0, len(dealers))
	for i := range dealers {
		out = append(out, h.dealerResponse(&dealers[i]))
	}
	return out
}

func userResponse(u *ds.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}
