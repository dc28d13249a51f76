// Package main TravelBot API Server
//
//	@title			TravelBot API
//	@version		1.0
//	@description	A question-answering API for group trip itineraries, grounded in uploaded travel documents
//
//	@contact.name	API Support
//
//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"log"

	"github.com/joho/godotenv"

	_ "github.com/craigsakuma/travelroboto/docs" // This imports the docs package to initialize swagger
	"github.com/craigsakuma/travelroboto/internal/server"
)

func main() {
	// Local development keeps credentials in .env; missing file is fine
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("Starting TravelBot Server...")
	srv := server.NewServer()
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
