package config

import "github.com/spf13/viper"

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Production struct {
		HourlyRate  float64 `mapstructure:"hourly_rate"`
		FolioPrefix string  `mapstructure:"folio_prefix"`
	} `mapstructure:"production"`

	// Materials.ScrapSKUs maps a material kind (gold10k, gold14k, silver)
	// to the SKU of the scrap product credited on material payments. An
	// explicit mapping, fixed at setup time — never matched by display name.
	Materials struct {
		ScrapSKUs map[string]string `mapstructure:"scrap_skus"`
	} `mapstructure:"materials"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("production.hourly_rate", 150)
	v.SetDefault("production.folio_prefix", "OP")

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
