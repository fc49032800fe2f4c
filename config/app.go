package config

type App struct {
	Port         string `env:"APP_PORT" default:"8080"`
	DatabaseURL  string `env:"DATABASE_URL,required"`
	JWTSecret    string `env:"JWT_SECRET,required"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	UploadDir    string `env:"UPLOAD_DIR" default:"public/uploads/covers"`
	Env          string `env:"APP_ENV" default:"dev"`
}
