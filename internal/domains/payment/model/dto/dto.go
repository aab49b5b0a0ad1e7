package dto

type CreateIntentRequest struct {
	Price *float64 `json:"price" validate:"required,gte=0"`
}

type CreateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
