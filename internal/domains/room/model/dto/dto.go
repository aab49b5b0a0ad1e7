package dto

import (
	"mime/multipart"
	"strings"

	"stayvista/internal/domains/booking/pricing"
	"stayvista/internal/domains/room/model"
	"stayvista/shared"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/shared/failure"
	gModel "stayvista/shared/model"
	"stayvista/shared/timezone"

	"github.com/google/uuid"
)

type HostRequest struct {
	Name  string `json:"name"  validate:"omitempty,max=255"`
	Image string `json:"image" validate:"omitempty,max=1024"`
}

type CreateRoomRequest struct {
	Title       string                `json:"title"       validate:"required,max=255"`
	Description string                `json:"description" validate:"omitempty,max=5000"`
	Location    string                `json:"location"    validate:"required,max=255"`
	Category    string                `json:"category"    validate:"required,max=100"`
	Image       string                `json:"image"       validate:"omitempty,url,max=1024"`
	Price       float64               `json:"price"       validate:"gte=0"`
	Guests      int                   `json:"guests"      validate:"gte=0"`
	Bedrooms    int                   `json:"bedrooms"    validate:"gte=0"`
	Bathrooms   int                   `json:"bathrooms"   validate:"gte=0"`
	From        string                `json:"from"        validate:"required,calendardate"`
	To          string                `json:"to"          validate:"required,calendardate"`
	Host        HostRequest           `json:"host"`
	ImageHeader *multipart.FileHeader `json:"-"           validate:"omitempty,mimetypes=image/png image/jpg image/jpeg image/webp,maxfilesize=2"`
	ImageFile   multipart.File        `json:"-"`
}

// ToModel converts the request, rejecting ranges where from is not before to.
func (c *CreateRoomRequest) ToModel(host, imageURL string) (model.Room, error) {
	from, err := timezone.ParseDate(c.From)
	if err != nil {
		return model.Room{}, failure.BadRequestFromString("invalid from date") // nolint:wrapcheck
	}

	to, err := timezone.ParseDate(c.To)
	if err != nil {
		return model.Room{}, failure.BadRequestFromString("invalid to date") // nolint:wrapcheck
	}

	if _, err = pricing.Nights(from, to); err != nil {
		return model.Room{}, failure.BadRequest(err) // nolint:wrapcheck
	}

	priceCents, err := pricing.ToMinorUnits(c.Price)
	if err != nil {
		return model.Room{}, failure.BadRequest(err) // nolint:wrapcheck
	}

	if imageURL == constant.Empty {
		imageURL = c.Image
	}

	return model.Room{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(c.Title),
		Description:   c.Description,
		Location:      c.Location,
		Category:      c.Category,
		Image:         imageURL,
		PriceCents:    priceCents,
		Guests:        c.Guests,
		Bedrooms:      c.Bedrooms,
		Bathrooms:     c.Bathrooms,
		AvailableFrom: from,
		AvailableTo:   to,
		HostEmail:     host,
		HostName:      c.Host.Name,
		HostImage:     c.Host.Image,
		Booked:        false,
		Metadata:      gModel.Stamp(host, timezone.Now()),
	}, nil
}

type UpdateStatusRequest struct {
	Status *bool `json:"status" validate:"required"`
}

type HostResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type RoomResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	Category    string       `json:"category"`
	Image       string       `json:"image"`
	Price       float64      `json:"price"`
	PriceCents  int64        `json:"price_cents"`
	Guests      int          `json:"guests"`
	Bedrooms    int          `json:"bedrooms"`
	Bathrooms   int          `json:"bathrooms"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Host        HostResponse `json:"host"`
	Booked      bool         `json:"booked"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Title = model.Title
	r.Description = model.Description
	r.Location = model.Location
	r.Category = model.Category
	r.Image = model.Image
	r.Price = pricing.FromMinorUnits(model.PriceCents)
	r.PriceCents = model.PriceCents
	r.Guests = model.Guests
	r.Bedrooms = model.Bedrooms
	r.Bathrooms = model.Bathrooms
	r.From = model.AvailableFrom.Format(constant.DayFormat)
	r.To = model.AvailableTo.Format(constant.DayFormat)
	r.Host = HostResponse{Email: model.HostEmail, Name: model.HostName, Image: model.HostImage}
	r.Booked = model.Booked
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
