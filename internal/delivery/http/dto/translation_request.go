package dto

type UpdateTranslationRequest struct {
	Type         string            `json:"type"`
	Key          string            `json:"key"`
	Industry     string            `json:"industry"`
	Name         string            `json:"name"`
	Translations map[string]string `json:"translations"`
	IsEdit       bool              `json:"isEdit"`
}

type DeleteTranslationRequest struct {
	Type     string `json:"type"`
	Key      string `json:"key"`
	Industry string `json:"industry"`
}
