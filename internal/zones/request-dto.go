package zones

type UpdateFieldRequest struct {
	Field string      `json:"field" binding:"required,oneof=display_name price seats_quota status location_zone_id"`
	Value interface{} `json:"value"`
}
