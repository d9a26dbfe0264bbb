package dto

type SignUpPreference struct {
	Industry       string `json:"industry"`
	WorkType       string `json:"workType"`
	SpecialtyNote  string `json:"specialtyNote"`
	ExperienceNote string `json:"experienceNote"`
}

type SignUpRequest struct {
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Avatar          *string            `json:"avatar"`
	AboutMe         string             `json:"aboutMe"`
	WorkPreferences []SignUpPreference `json:"workPreferences"`
}
