package dto

import (
	"stayvista/internal/domains/audit/model"
	"stayvista/shared"
	"stayvista/shared/constant"
	"stayvista/shared/timezone"
)

type RecordResponse struct {
	ID           string         `json:"id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Actor        string         `json:"actor"`
	ClientIP     string         `json:"client_ip"`
	Before       map[string]any `json:"before,omitempty"`
	After        map[string]any `json:"after,omitempty"`
	CreatedAt    string         `json:"created_at"`
}

func (r *RecordResponse) FromModel(model model.Record) {
	r.ID = model.ID.Hex()
	r.Action = model.Action
	r.ResourceType = model.ResourceType
	r.ResourceID = model.ResourceID
	r.Actor = model.Actor
	r.ClientIP = model.ClientIP
	r.Before = model.Before
	r.After = model.After
	r.CreatedAt = timezone.Format(model.CreatedAt, constant.DateFormat)
}

type GetRecordsResponse struct {
	Records   []RecordResponse `json:"records"`
	TotalPage int              `json:"total_page"`
	TotalData int              `json:"total_data"`
}

func (r *GetRecordsResponse) FromModels(models []model.Record, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Records = make([]RecordResponse, len(models))
	for i, mod := range models {
		r.Records[i].FromModel(mod)
	}
}

// Filter narrows the audit listing. Empty fields are ignored.
type Filter struct {
	Actor        string
	ResourceType string
	ResourceID   string
}
