package main

import (
	logger "github.com/sirupsen/logrus"
)

const version = "GRB-RainbowWeather-1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Fatalf("Weather station failed [%v]", err)
	}
	logger.Info("Exiting...")
}
