package model

// Known system setting keys
const (
	SettingCatererRegistration = "caterer_registration"
	SettingAdminRegistration   = "admin_registration"
)

var KnownSettings = []string{SettingCatererRegistration, SettingAdminRegistration}

type SystemSetting struct {
	Key   string `json:"setting_key"`
	Value string `json:"setting_value"` // 'true' | 'false'
}

// Enabled checks if the setting value is 'true'
func (s *SystemSetting) Enabled() bool {
	return s.Value == "true"
}
