package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Device models
type ZoneDescriptor struct {
	Name string `json:"name" example:"AlienHead" doc:"Zone name"`
	Code uint32 `json:"code" example:"32" doc:"Protocol zone code"`
}

type DeviceData struct {
	Model     string           `json:"model" example:"Alienware M14x R1" doc:"Detected device model"`
	Transport string           `json:"transport" example:"usb" doc:"Transport variant in use (usb or sysfs)"`
	Revision  int              `json:"revision" example:"1" doc:"Command packet revision"`
	Zones     []ZoneDescriptor `json:"zones" doc:"Addressable zones in declaration order"`
}

type DeviceResponse struct {
	Body DeviceData
}

// Zone state models
type ZoneStateData struct {
	Name    string `json:"name" example:"AlienHead" doc:"Zone name"`
	Color   string `json:"color" example:"#ff0000" doc:"Current color as hex RGB"`
	Effect  string `json:"effect" example:"static" doc:"Current effect mode"`
	Enabled bool   `json:"enabled" example:"true" doc:"Whether the zone is lit"`
}

type ZoneListData struct {
	Zones []ZoneStateData `json:"zones" doc:"State of every zone in declaration order"`
	Count int             `json:"count" example:"10" doc:"Number of zones"`
}

type ZoneListResponse struct {
	Body ZoneListData
}

type ZoneResponse struct {
	Body ZoneStateData
}

// ZoneRequestData carries the desired state for one zone.
type ZoneRequestData struct {
	Color   string `json:"color" pattern:"^#[0-9a-fA-F]{6}$" example:"#00ff00" doc:"Color as #rrggbb"`
	Effect  string `json:"effect,omitempty" enum:"static,pulse,morph,off" example:"static" doc:"Effect mode, defaults to static"`
	Color2  string `json:"color2,omitempty" pattern:"^#[0-9a-fA-F]{6}$" example:"#0000ff" doc:"Morph target color, required for morph"`
	Enabled *bool  `json:"enabled,omitempty" example:"true" doc:"Light the zone; defaults to true"`
}

type ApplyAllRequestData struct {
	Zones map[string]ZoneRequestData `json:"zones" doc:"Desired state per zone name; unnamed zones keep their state"`
}

// Reset models
type ResetRequestData struct {
	Mode string `json:"mode" enum:"all-lights-off,all-lights-on" example:"all-lights-on" doc:"Reset mode"`
}

// Controller status models
type StatusData struct {
	Ready     bool   `json:"ready" example:"true" doc:"Whether the device reported ready"`
	Raw       uint8  `json:"raw" example:"16" doc:"Raw status byte from the device"`
	Supported bool   `json:"supported" example:"true" doc:"False when the transport cannot read status"`
	Transport string `json:"transport" example:"usb" doc:"Transport variant in use"`
}

type StatusResponse struct {
	Body StatusData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2026-01-15 14:30" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"a1b2c3d4" doc:"Unique build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Compiler used"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Theme models mirror the on-disk theme format.
type ThemeActionData struct {
	Type   string   `json:"type" enum:"fixed,blink,morph" example:"fixed" doc:"Action type"`
	Colors []string `json:"colours" doc:"One color for fixed and blink, two for morph"`
}

type ThemeStateItemData struct {
	Zones []string          `json:"zones" doc:"Zone names this block addresses"`
	Loop  []ThemeActionData `json:"loop" doc:"Effect loop applied to the zones"`
}

type ThemeData struct {
	Name   string                          `json:"name" example:"default" doc:"Theme name"`
	Speed  uint16                          `json:"speed" example:"200" doc:"Morph/blink tempo"`
	States map[string][]ThemeStateItemData `json:"states" doc:"Blocks keyed by power state name"`
}

type ThemeResponse struct {
	Body ThemeData
}

type ThemeSummary struct {
	Name string `json:"name" example:"default" doc:"Theme name"`
}

type ThemeListData struct {
	Themes      []ThemeSummary `json:"themes" doc:"Available themes"`
	LastApplied string         `json:"last_applied,omitempty" example:"default" doc:"Theme most recently applied, if any"`
}

type ThemeListResponse struct {
	Body ThemeListData
}

type ThemeAppliedData struct {
	Theme  string `json:"theme" example:"default" doc:"Theme name"`
	States int    `json:"states" example:"4" doc:"Number of power states covered"`
}

type ThemeAppliedResponse struct {
	Body ThemeAppliedData
}

// Error response
type ErrorData struct {
	Status  string `json:"status" example:"error" doc:"Error status"`
	Message string `json:"message" example:"unknown zone" doc:"Error message"`
}

type ErrorResponse struct {
	Body ErrorData
}
