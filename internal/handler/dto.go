package handler

import (
	"time"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/service"
)

// ----- response DTOs -----

type cityResp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type eventResp struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	StartDate   *string   `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Price       *float64  `json:"price"`
	Image       *string   `json:"image"` // storage path
	IsActive    bool      `json:"is_active"`
	CityID      string    `json:"city_id"`
	City        *cityResp `json:"city,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type reservedEventResp struct {
	eventResp
	ReservedAt time.Time `json:"reserved_at"`
}

// userResp never carries the password hash.
type userResp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type authResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        userResp  `json:"user"`
}

func toCity(c *model.City) *cityResp {
	if c == nil {
		return nil
	}
	return &cityResp{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func toCities(cs []*model.City) []*cityResp {
	out := make([]*cityResp, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCity(c))
	}
	return out
}

func toEvent(e *model.Event) eventResp {
	return eventResp{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   model.FormatDate(e.StartDate),
		EndDate:     model.FormatDate(e.EndDate),
		Price:       e.Price,
		Image:       e.Image,
		IsActive:    e.IsActive,
		CityID:      e.CityID,
		City:        toCity(e.City),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEvents(es []*model.Event) []eventResp {
	out := make([]eventResp, 0, len(es))
	for _, e := range es {
		out = append(out, toEvent(e))
	}
	return out
}

func toReservedEvents(rs []*model.ReservedEvent) []reservedEventResp {
	out := make([]reservedEventResp, 0, len(rs))
	for _, r := range rs {
		out = append(out, reservedEventResp{eventResp: toEvent(&r.Event), ReservedAt: r.ReservedAt})
	}
	return out
}

func toUser(u *model.User) userResp {
	return userResp{
		ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func toAuth(r *service.AuthResult) authResp {
	return authResp{AccessToken: r.AccessToken, TokenType: r.TokenType, ExpiresAt: r.ExpiresAt, User: toUser(r.User)}
}
