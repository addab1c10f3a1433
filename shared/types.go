package shared

type ServerConfig struct {
	Sqlite   SqliteConfig   `mapstructure:"sqlite" validate:"required"`
	Raksha   RakshaConfig   `mapstructure:"raksha" validate:"required"`
	WhatsApp WhatsAppConfig `mapstructure:"whatsapp"`
	Google   GoogleConfig   `mapstructure:"google"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
}

type SqliteConfig struct {
	PassPhrase string `mapstructure:"passPhrase" validate:"required"`
}

type RakshaConfig struct {
	PrivateKeyPem string         `mapstructure:"privateKeyPem" validate:"required"`
	Cron          CronConfig     `mapstructure:"cron" validate:"required"`
	Listener      ListenerConfig `mapstructure:"listener" validate:"required"`
}

// WhatsAppConfig carries the messaging provider credentials. Missing or
// placeholder values switch SOS dispatch into simulation mode instead of
// failing the request.
type WhatsAppConfig struct {
	Token              string `mapstructure:"token"`
	PhoneNumberID      string `mapstructure:"phoneNumberId"`
	DefaultCountryCode string `mapstructure:"defaultCountryCode"`
	APIBaseURL         string `mapstructure:"apiBaseUrl"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone" validate:"required"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required"`
}

type StorageConfig struct {
	Bucket                    string      `mapstructure:"bucket" validate:"required_with=EnableSqliteBackupAndSync"`
	Prefix                    string      `mapstructure:"prefix" validate:"required_with=EnableSqliteBackupAndSync"`
	SqliteBackupSchedule      string      `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackupAndSync"`
	EnableSqliteBackupAndSync interface{} `mapstructure:"enableSqliteBackupAndSync" validate:"omitempty,bool"`
}

type UploadsConfig struct {
	Dir string `mapstructure:"dir"`
}
