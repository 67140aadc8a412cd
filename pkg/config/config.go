package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override, e.g.
// FLOORPLANS_SERVER_LISTEN or FLOORPLANS_DATA_CSV_PATH.
const EnvPrefix = "FLOORPLANS"

const DefaultFilename = "floorplans.toml"

type Config struct {
	Server  ServerConfig  `toml:"server" envconfig:"SERVER"`
	Data    DataConfig    `toml:"data" envconfig:"DATA"`
	Logging LoggingConfig `toml:"logging" envconfig:"LOGGING"`
}

type ServerConfig struct {
	Listen string `toml:"listen" envconfig:"LISTEN" validate:"required"`
}

type DataConfig struct {
	CSVPath  string      `toml:"csv_path" envconfig:"CSV_PATH" validate:"required_without=Sheet.SpreadsheetID"`
	ImageDir string      `toml:"image_dir" envconfig:"IMAGE_DIR" validate:"required"`
	Sheet    SheetConfig `toml:"sheet" envconfig:"SHEET"`
}

// SheetConfig selects a Google Sheets range as the table source. It is
// used instead of CSVPath when SpreadsheetID is set.
type SheetConfig struct {
	CredentialsFile string `toml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	SpreadsheetID   string `toml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	Range           string `toml:"range" envconfig:"RANGE" validate:"required_with=SpreadsheetID"`
}

type LoggingConfig struct {
	Level  string `toml:"level" envconfig:"LEVEL" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `toml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// Default returns the settings used when neither a file nor the
// environment says otherwise.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen: ":8080",
		},
		Data: DataConfig{
			CSVPath:  "floor_plan_comparisons.csv",
			ImageDir: "floorplans",
			Sheet: SheetConfig{
				Range: "Sheet1!A:Z",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// UsesSheet reports whether the table comes from Google Sheets.
func (c Config) UsesSheet() bool {
	return c.Data.Sheet.SpreadsheetID != ""
}

// Save writes the config out to a toml file.
func (c Config) Save(filename string) error {
	b, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}

// Load builds the config from defaults, then the toml file if it exists,
// then the environment (including a .env file in the working directory).
// An empty filename skips the file.
func Load(filename string) (Config, error) {
	c := Default()

	if filename != "" {
		b, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return c, err
		default:
			if err := toml.Unmarshal(b, &c); err != nil {
				return c, fmt.Errorf("parse %s: %w", filename, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return c, fmt.Errorf("load config from env: %w", err)
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
