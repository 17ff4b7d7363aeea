package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/ledtiming/api"
	"github.com/matt-g-everett/ledtiming/stream"
	"github.com/matt-g-everett/ledtiming/timing"
	"github.com/matt-g-everett/ledtiming/timing/source"
)

type app struct {
	Config     *stream.Config
	Client     mqtt.Client
	Source     *source.Scheduled
	Controller *stream.Controller
	Streamer   *stream.Streamer
	Show       *stream.Show
	Remote     *stream.Remote
	Api        *api.Api
	Watcher    *stream.Watcher
	logger     *log.Logger
}

func newApp() *app {
	a := new(app)
	a.logger = log.New(os.Stdout, "", log.LstdFlags)
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	a.logger.Println("Connected")
	if err := a.Remote.Subscribe(); err != nil {
		a.logger.Printf("[remote] subscribe failed: %v", err)
	}
}

func (a *app) readConfig(configPath string) {
	c, err := stream.LoadConfig(configPath)
	if err != nil {
		panic(err)
	}
	a.Config = c
}

func (a *app) build() {
	c := a.Config

	options := mqtt.NewClientOptions().
		AddBroker(c.Mqtt.URL).
		SetClientID(c.Mqtt.ClientID).
		SetUsername(c.Mqtt.Username).
		SetPassword(c.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(a.handleOnConnect)
	a.Client = mqtt.NewClient(options)

	a.Source = source.NewScheduled(time.Duration(c.Source.Period))
	a.Source.SetLogger(a.logger)
	defs := timing.Defaults{
		TimingSource: a.Source,
		ErrorHandler: &timing.LogHandler{Logger: a.logger, Verbose: true},
	}

	playlist, err := stream.NewAnimations(c)
	if err != nil {
		panic(err)
	}
	a.Controller, err = stream.NewController(defs, time.Duration(c.Show.Cycle),
		time.Duration(c.Show.Transition), a.logger, playlist...)
	if err != nil {
		panic(err)
	}

	publisher := stream.NewMqttPublisher(a.Client, c.Mqtt.Topics.Stream, c.Mqtt.Qos)
	a.Streamer = stream.NewStreamer(a.Controller, publisher, a.logger)
	a.Show, err = stream.NewShow(defs, c.Animator, a.Controller, a.logger, a.Streamer)
	if err != nil {
		panic(err)
	}
	a.Remote = stream.NewRemote(a.Client, c.Mqtt.Topics.Control, c.Mqtt.Qos, a.Show, a.logger)
	a.Api = api.NewApi(a.Show, c.Api.Static, a.logger)
}

func (a *app) reload(c *stream.Config) {
	if err := a.Show.Reload(c); err != nil {
		a.logger.Printf("[app] reload rejected: %v", err)
		return
	}
	a.Config = c
}

func (a *app) run(configPath string) {
	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		panic(token.Error())
	}

	if err := a.Source.Init(); err != nil {
		panic(err)
	}
	if _, err := a.Show.Execute(stream.CmdStart); err != nil {
		panic(err)
	}

	w, err := stream.NewWatcher(configPath, a.reload, a.logger)
	if err != nil {
		a.logger.Printf("[app] config hot reload disabled: %v", err)
	}
	a.Watcher = w

	stop := make(chan struct{})
	go a.Controller.Run(stop)
	go func() {
		if err := a.Api.Serve(a.Config.Api.Listen); err != nil {
			a.logger.Printf("[api] %v", err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals
	a.logger.Println("Shutting down")

	close(stop)
	if a.Watcher != nil {
		a.Watcher.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.Api.Shutdown(ctx)
	a.Show.Animator().Stop()
	a.Source.Dispose()
	a.Client.Disconnect(250)
}

func main() {
	// mqtt.DEBUG = log.New(os.Stdout, "", 0)
	mqtt.ERROR = log.New(os.Stdout, "", 0)
	mqtt.CRITICAL = log.New(os.Stdout, "", 0)

	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	flag.Parse()

	// Read the config
	a := newApp()
	a.readConfig(*configPath)
	a.logger.Printf("Config: pixels=%d period=%v broker=%s topic=%s",
		a.Config.Strip.Pixels, a.Config.Source.Period, a.Config.Mqtt.URL, a.Config.Mqtt.Topics.Stream)

	a.build()
	a.run(*configPath)
}
