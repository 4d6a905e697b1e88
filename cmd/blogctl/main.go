// Command blogctl runs maintenance tasks against the blog database.
package main

import (
	"os" // Exit codes

	"blog_system/internal/config" // Custom package for configuration
	"blog_system/internal/db"     // Database connection

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if err := newRootCmd(connect).Execute(); err != nil {
		os.Exit(1)
	}
}

// connect opens the database configured through the environment
func connect() (*gorm.DB, error) {
	return db.Connect(config.LoadConfig())
}
