package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/peterbourgon/ff"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/passage-server/api"
	"github.com/a-bouts/passage-server/fleet"
	"github.com/a-bouts/passage-server/store"
	"github.com/a-bouts/passage-server/wind"
	"github.com/a-bouts/passage-server/xmpp"

	_ "net/http/pprof"
)

func main() {

	fs := flag.NewFlagSet("passage-server", flag.ExitOnError)
	var (
		port         = fs.Int("port", 8888, "listen port")
		gribDir      = fs.String("grib-dir", "grib", "directory of GRIB2 forecast files")
		plansDir     = fs.String("plans-dir", "plans", "directory of saved plans")
		fleetFile    = fs.String("fleet-file", "", "YAML file of ship presets, empty for the built-in fleet")
		cpuprofile   = fs.Bool("cpuprofile", false, "profile trajectory requests")
		debug        = fs.Bool("debug", false, "debug logging")
		xmppHost     = fs.String("xmpp-host", "", "")
		xmppJid      = fs.String("xmpp-jid", "", "")
		xmppPassword = fs.String("xmpp-password", "", "")
		xmppTo       = fs.String("xmpp-to", "", "")
	)
	ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix())

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	x := xmpp.Xmpp{Config: xmpp.Config{Host: *xmppHost, Jid: *xmppJid, Password: *xmppPassword, To: *xmppTo}}

	f, err := fleet.Load(*fleetFile)
	if err != nil {
		log.WithError(err).Fatal("Error loading the fleet")
	}

	st, err := store.New(*plansDir)
	if err != nil {
		log.WithError(err).Fatal("Error opening the plan store")
	}

	log.Info("Load winds")
	w := wind.InitWinds(*gribDir)

	log.Infof("Start server on :%d", *port)

	router := api.InitServer(*cpuprofile, w, f, st, &x)

	corsOk := handlers.AllowedOrigins([]string{"*"})
	corsHeaders := handlers.AllowedHeaders([]string{"Content-Type"})
	corsMethods := handlers.AllowedMethods([]string{"GET", "POST", "PUT"})

	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", *port),
		handlers.CombinedLoggingHandler(os.Stdout,
			handlers.CORS(corsOk, corsHeaders, corsMethods)(router))))
}
