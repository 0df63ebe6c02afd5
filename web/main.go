package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-sphere-raytracer/web/server"
)

func main() {
	// Environment overrides the defaults, flags override the environment
	config, err := server.LoadConfig(server.DefaultConfig())
	if err != nil {
		log.Printf("Error loading configuration: %v", err)
		os.Exit(1)
	}

	flag.IntVar(&config.Port, "port", config.Port, "Port to serve on")
	flag.StringVar(&config.StaticDir, "static", config.StaticDir, "Directory of static web files")
	flag.IntVar(&config.NumWorkers, "workers", config.NumWorkers, "Number of parallel workers (0 = auto)")
	flag.IntVar(&config.MaxPasses, "max-passes", config.MaxPasses, "Maximum progressive passes per render")
	flag.Parse()

	webServer := server.NewServer(config)

	log.Printf("Sphere Raytracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", config.Port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
