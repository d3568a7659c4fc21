package store

// SystemSettingSchemaVersion tracks the applied database schema version.
const SystemSettingSchemaVersion = "schema_version"

type SystemSetting struct {
	Name  string
	Value string
}

type FindSystemSetting struct {
	Name string
}
