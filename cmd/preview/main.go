// Command preview shows the LED animations in a terminal. By default it
// runs the show locally; with -mqtt it draws the frames a running ledtx
// publishes instead.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gdamore/tcell/v2"
	"github.com/matt-g-everett/ledtiming/stream"
	"github.com/matt-g-everett/ledtiming/timing"
	"github.com/matt-g-everett/ledtiming/timing/source"
)

func loadConfig(path string) *stream.Config {
	if path == "" {
		return stream.DefaultConfig()
	}
	c, err := stream.LoadConfig(path)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

// runLocal drives a TerminalPreview from its own animator. It returns when
// the user quits.
func runLocal(screen tcell.Screen, c *stream.Config, logger *log.Logger) error {
	src := source.NewScheduled(time.Duration(c.Source.Period))
	src.SetLogger(logger)
	defs := timing.Defaults{
		TimingSource: src,
		ErrorHandler: &timing.LogHandler{Logger: logger},
	}

	playlist, err := stream.NewAnimations(c)
	if err != nil {
		return err
	}
	controller, err := stream.NewController(defs, time.Duration(c.Show.Cycle),
		time.Duration(c.Show.Transition), logger, playlist...)
	if err != nil {
		return err
	}
	preview := stream.NewTerminalPreview(screen, controller)
	show, err := stream.NewShow(defs, c.Animator, controller, logger, preview)
	if err != nil {
		return err
	}

	if err := src.Init(); err != nil {
		return err
	}
	defer src.Dispose()
	if _, err := show.Execute(stream.CmdStart); err != nil {
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	go controller.Run(stop)

	for {
		ev, ok := screen.PollEvent().(*tcell.EventKey)
		if !ok {
			continue
		}
		var cmd stream.Command
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
			show.Animator().Cancel()
			return nil
		case ev.Rune() == ' ':
			cmd = stream.CmdPause
			if show.Animator().IsPaused() {
				cmd = stream.CmdResume
			}
		case ev.Rune() == 'r':
			cmd = stream.CmdReverse
		case ev.Rune() == 'n':
			cmd = stream.CmdNext
		case ev.Rune() == 's':
			cmd = stream.CmdStart
			if show.Animator().IsRunning() {
				cmd = stream.CmdStop
			}
		default:
			continue
		}
		if _, err := show.Execute(cmd); err != nil {
			preview.Caption(err.Error())
		}
	}
}

// runRemote draws every frame published on the stream topic.
func runRemote(screen tcell.Screen, c *stream.Config, logger *log.Logger) error {
	preview := stream.NewTerminalPreview(screen, nil)
	frames := 0
	handleFrame := func(_ mqtt.Client, msg mqtt.Message) {
		f := new(stream.Frame)
		if err := f.UnmarshalBinary(msg.Payload()); err != nil {
			logger.Printf("[preview] %v", err)
			return
		}
		frames++
		preview.Draw(f, fmt.Sprintf("%s: frame %d (%d pixels)", msg.Topic(), frames, f.Len()))
	}

	options := mqtt.NewClientOptions().
		AddBroker(c.Mqtt.URL).
		SetClientID(c.Mqtt.ClientID + "-preview").
		SetUsername(c.Mqtt.Username).
		SetPassword(c.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOrderMatters(true)
	client := mqtt.NewClient(options)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	if token := client.Subscribe(c.Mqtt.Topics.Stream, 0, handleFrame); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	for {
		if ev, ok := screen.PollEvent().(*tcell.EventKey); ok {
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return nil
			}
		}
	}
}

func main() {
	configPath := flag.String("config", "", "YAML config file; defaults are used when empty.")
	remote := flag.Bool("mqtt", false, "Draw frames from the MQTT stream topic instead of running the show.")
	logPath := flag.String("log", "preview.log", "Log file, since the terminal is taken by the preview.")
	flag.Parse()

	c := loadConfig(*configPath)

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)
	mqtt.ERROR = logger

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}

	if *remote {
		err = runRemote(screen, c, logger)
	} else {
		err = runLocal(screen, c, logger)
	}
	screen.Fini()
	if err != nil {
		log.Fatal(err)
	}
}
