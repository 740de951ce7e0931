/*
 * IRC daemon.
 */

package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	args := getArgs()
	if args == nil {
		os.Exit(1)
	}

	cfg, err := loadConfig(args.ConfigFile)
	if err != nil {
		log.WithError(err).Fatal("configuration problem")
	}

	if args.ServerName != "" {
		cfg.ServerName = args.ServerName
	}

	s := NewServer(cfg, log)

	if err := s.Run(); err != nil {
		log.WithError(err).Fatal("server shut down")
	}
}
