package Handlers

import (
	"errors"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	Debug           bool
	LogPath         string
	MongoHost       string
	TmdbApiKey      string
	TmdbBaseUrl     string
	ShareBaseUrl    string
	FirebaseProject string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("MONGO_HOST", "localhost")
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("SHARE_BASE_URL", "https://flipfilm.app")

	if err := viper.ReadInConfig(); err != nil {
		// missing .env is fine, the environment can carry everything
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		Port:            viper.GetString("PORT"),
		Debug:           viper.GetBool("DEBUG"),
		LogPath:         viper.GetString("LOG_PATH"),
		MongoHost:       viper.GetString("MONGO_HOST"),
		TmdbApiKey:      viper.GetString("TMDB_API_KEY"),
		TmdbBaseUrl:     viper.GetString("TMDB_BASE_URL"),
		ShareBaseUrl:    viper.GetString("SHARE_BASE_URL"),
		FirebaseProject: viper.GetString("FIREBASE_PROJECT_ID"),
	}

	return config, nil
}
