// Command oonfwd runs the forwarding engine as a standalone process,
// grounded on the teacher's fw/cmd/cmd.go: a single cobra command taking
// a config file path, wiring a Forwarder, and waiting on a signal to
// shut down.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/oonfwd/oonfwd/core"
	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/face"
	"github.com/oonfwd/oonfwd/fw"
	"github.com/spf13/cobra"
)

var config = core.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "oonfwd CONFIG-FILE",
	Short: "Object-processing NDN forwarding daemon",
	Args:  cobra.ExactArgs(1),
	Run:   run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	configfile := args[0]
	config.Core.BaseDir = filepath.Dir(configfile)

	if err := core.LoadConfig(config, configfile); err != nil {
		core.Log.Fatal(nil, "failed to read config file", "path", configfile, "err", err)
	}

	level, err := core.ParseLevel(config.Core.LogLevel)
	if err != nil {
		core.Log.Warn(nil, "invalid log level, defaulting to INFO", "configured", config.Core.LogLevel)
		level = core.LevelInfo
	}
	core.SetLevel(level)

	forwarder := fw.New(config)

	var srv *http.Server
	if config.Faces.WebSocketBind != "" {
		srv = startWebSocketListener(forwarder, config.Faces.WebSocketBind)
	}

	core.Log.Info(nil, "oonfwd started", "config", configfile)

	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)
	receivedSig := <-sigChannel
	core.Log.Info(nil, "received signal, exiting", "signal", receivedSig)

	if srv != nil {
		_ = srv.Close()
	}
}

// startWebSocketListener accepts local-app connections and registers
// each as a face.WebSocketFace, adapted from the teacher's
// fw/face/web-socket-listener.go onto net/http + gorilla/websocket
// directly (the teacher's own listener/transport split collapses here
// since this module has no link-service layer to hand packets to).
func startWebSocketListener(forwarder *fw.Forwarder, bind string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := face.Upgrader().Upgrade(w, r, nil)
		if err != nil {
			core.Log.Warn(nil, "websocket upgrade failed", "err", err)
			return
		}
		var wsFace *face.WebSocketFace
		id := forwarder.Faces().Add(func(id defn.FaceId) face.Face {
			wsFace = face.NewWebSocketFace(id, conn, forwarder)
			return wsFace
		})
		core.Log.Info(nil, "websocket face accepted", "faceid", id, "remote", conn.RemoteAddr())
		wsFace.RunReceive()
		forwarder.Faces().Remove(id)
	})

	srv := &http.Server{Addr: bind, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			core.Log.Error(nil, "websocket listener stopped", "err", err)
		}
	}()
	return srv
}
