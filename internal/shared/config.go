package shared

import "os"

// Config carries everything the server needs at boot. It is built once in
// main and handed to the store and API constructors; nothing reads the
// environment after startup.
type Config struct {
	Addr       string `json:"addr"`
	DBPath     string `json:"db_path"`
	AdminToken string `json:"admin_token"`
	AdminEmail string `json:"admin_email"`
	WebDir     string `json:"web_dir"`
}

func LoadServerConfig() *Config {
	c := &Config{
		Addr:       os.Getenv("BS_ADDR"),
		DBPath:     os.Getenv("BS_DB_PATH"),
		AdminToken: os.Getenv("BS_ADMIN_TOKEN"),
		AdminEmail: os.Getenv("ADMIN_EMAIL"),
		WebDir:     os.Getenv("BS_WEB_DIR"),
	}
	if c.Addr == "" {
		c.Addr = ":8090"
	}
	if c.DBPath == "" {
		c.DBPath = "./data/bookswap.db"
	}
	if c.AdminToken == "" {
		// dev default, override in env
		c.AdminToken = "change-me-secret-token"
	}
	if c.WebDir == "" {
		c.WebDir = "./web"
	}
	return c
}
