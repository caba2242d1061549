package main

import (
	"HustleHeroes/internal/repository"
	"HustleHeroes/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}
