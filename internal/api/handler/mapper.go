package handler

import (
	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
}

func toUpdateFarmerInput(req updateFarmerRequest) ports.UpdateFarmerInput {
	return ports.UpdateFarmerInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Location:    req.Location,
		Version:     req.Version,
	}
}

func toProductInput(req productRequest) (ports.ProductInput, error) {
	produced, err := parseDate("productionDate", req.ProductionDate)
	if err != nil {
		return ports.ProductInput{}, err
	}
	return ports.ProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Quantity:       req.Quantity,
		ProductionDate: produced,
		CategoryID:     req.CategoryID,
		Version:        req.Version,
	}, nil
}

// --- Domain → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Location:    u.Location,
		Role:        u.Role.String(),
		Version:     u.Version,
		CreatedAt:   u.CreatedAt.UTC(),
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Quantity:       p.Quantity,
		ProductionDate: p.ProductionDate.UTC().Format(dateLayout),
		FarmerID:       p.FarmerID,
		FarmerName:     p.FarmerName,
		CategoryID:     p.CategoryID,
		CategoryName:   p.CategoryName,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt.UTC(),
		UpdatedAt:      p.UpdatedAt.UTC(),
	}
}

func toProductResponses(products []*domain.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return out
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		ProductCount: c.ProductCount,
		Version:      c.Version,
	}
}

func toCategoryResponses(categories []*domain.Category) []categoryResponse {
	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = toCategoryResponse(c)
	}
	return out
}
