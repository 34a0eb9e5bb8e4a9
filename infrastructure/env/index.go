package env

import (
	"log"

	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("error loading env variables")
	}
}

func LoadEnv() {
}
