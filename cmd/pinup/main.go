package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"io/ioutil"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	pinup "github.com/machinelevel/sp433-pinup-weather"
	"github.com/machinelevel/sp433-pinup-weather/assets"
	"github.com/machinelevel/sp433-pinup-weather/atlas"
	"github.com/machinelevel/sp433-pinup-weather/compose"
	"github.com/machinelevel/sp433-pinup-weather/panel"
	"github.com/machinelevel/sp433-pinup-weather/preview"
	"github.com/machinelevel/sp433-pinup-weather/store"
	"github.com/machinelevel/sp433-pinup-weather/weather"
	"github.com/urfave/cli/v2"
)

const (
	defaultDB      = "pinup.db"
	defaultEnvFile = ".env"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
		logger.SetFlags(log.LstdFlags)
	}
	return logger
}

func parseInts(s string) ([]int, error) {
	var ints []int
	for _, f := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		ints = append(ints, i)
	}
	return ints, nil
}

func optionalInt(s string) (sql.NullInt64, error) {
	if s == "" {
		return sql.NullInt64{}, nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: i, Valid: true}, nil
}

func run(c *cli.Context) error {
	logger := newLogger(c)

	bundle, err := assets.Load()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	client, err := weather.NewClient(c.String("apikey"), c.String("zip"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	rotation, err := panel.ParseRotation(c.Int("rotation"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	var pnl panel.Panel
	switch c.String("panel") {
	case "epd":
		epd, closer, err := openEPD(rotation)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer closer()
		pnl = epd
	case "file":
		pnl = panel.NewFile(c.String("output"), rotation)
	default:
		return cli.NewExitError(fmt.Sprintf("unknown panel \"%s\"", c.String("panel")), 1)
	}

	reader, closer, err := openBattery(c.String("battery"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer closer()

	db, err := store.Open(c.String("db"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	options := []pinup.Option{
		pinup.WithStore(db),
	}
	if reader != nil {
		options = append(options, pinup.WithBattery(reader))
	}

	p := pinup.New(bundle, client, pnl, logger, options...)
	if err := p.Seed(); err != nil {
		return cli.NewExitError(err, 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var errs []<-chan error
	if addr := c.String("metrics-addr"); addr != "" {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		errs = append(errs, preview.New(p, p.Stats().Handler(), logger).Serve(ctx, l))
	}

	if err := p.Run(ctx, c.Duration("interval"), errs...); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func render(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	bundle, err := assets.Load()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	var s weather.Snapshot
	if s.Temp, err = optionalInt(c.String("temp")); err != nil {
		return cli.NewExitError(err, 1)
	}
	if s.FeelsLike, err = optionalInt(c.String("feels-like")); err != nil {
		return cli.NewExitError(err, 1)
	}
	if icon := c.String("icon"); icon != "" {
		s.Icon = sql.NullString{String: icon, Valid: true}
		if _, ok := compose.IconIndex(icon); !ok {
			newLogger(c).Printf("No icon for code \"%s\"\n", icon)
		}
	}
	s.WindMPH = c.Int("wind")

	at := time.Now()
	if v := c.String("at"); v != "" {
		if at, err = time.Parse(time.RFC3339, v); err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	s.SetUpdated(at)

	f, err := compose.Compose(&s, compose.BatteryFraction(c.Float64("volts")), bundle)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	rotation, err := panel.ParseRotation(c.Int("rotation"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	out := panel.NewFile(c.Args().First(), rotation)
	if err := out.Show(f); err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := out.Refresh(); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func pack(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	var axis atlas.Axis
	switch c.String("axis") {
	case "rows":
		axis = atlas.Rows
	case "columns":
		axis = atlas.Columns
	default:
		return cli.NewExitError(fmt.Sprintf("unknown axis \"%s\"", c.String("axis")), 1)
	}

	markers, err := parseInts(c.String("markers"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	in, err := os.Open(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer in.Close()

	src, _, err := image.Decode(in)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	file := c.Args().Get(1)
	out, err := os.Create(file)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer out.Close()

	if err := atlas.Encode(out, src); err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := out.Close(); err != nil {
		return cli.NewExitError(err, 1)
	}

	keys := make([]string, len(markers)-1)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	if k := c.String("keys"); k != "" {
		keys = strings.Split(k, ",")
	}

	// Check the packed strip slices cleanly
	r, err := os.Open(file)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer r.Close()

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	m, err := atlas.Read(name, r)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	t, err := atlas.DecodeStrip(m, atlas.Strip{Name: name, Axis: axis, Markers: markers, Keys: keys})
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(c.App.Writer, "%s: %d glyphs\n", file, t.Len())

	return nil
}

func inspect(c *cli.Context) error {
	bundle, err := assets.Load()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	w := c.App.Writer
	for _, name := range bundle.Tables() {
		t, _ := bundle.Table(name)
		fmt.Fprintf(w, "%s (%s) markers %v\n", name, t.Axis(), t.Markers())
		for i, key := range t.Keys() {
			g, _ := t.Glyph(i)
			fmt.Fprintf(w, "  %2d %-16s %dx%d\n", i, key, g.Width(), g.Height())
		}
	}
	for _, name := range []string{assets.Background, assets.Wind} {
		g, _ := bundle.Icon(name)
		fmt.Fprintf(w, "%s (icon) %dx%d\n", name, g.Width(), g.Height())
	}

	return nil
}

func loadEnv() error {
	file := os.Getenv("PINUP_ENV_FILE")
	if file == "" {
		file = defaultEnvFile
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func main() {
	if err := loadEnv(); err != nil {
		log.Fatal(err)
	}

	app := cli.NewApp()

	app.Name = "pinup"
	app.Usage = "E-paper weather display"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	rotationFlag := &cli.IntFlag{
		Name:  "rotation",
		Value: 0,
		Usage: "clockwise frame rotation in degrees",
	}

	app.Commands = []*cli.Command{
		{
			Name:        "run",
			Usage:       "Fetch the weather and refresh the panel periodically",
			Description: "",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "db",
					EnvVars: []string{"PINUP_DB"},
					Value:   filepath.Join(cwd, defaultDB),
					Usage:   "path to database",
				},
				&cli.StringFlag{
					Name:    "zip",
					EnvVars: []string{"PINUP_ZIP"},
					Usage:   "US zip code",
				},
				&cli.StringFlag{
					Name:    "apikey",
					EnvVars: []string{"OPENWEATHER_APIKEY"},
					Usage:   "OpenWeatherMap API key",
				},
				&cli.DurationFlag{
					Name:    "interval",
					EnvVars: []string{"PINUP_INTERVAL"},
					Value:   30 * time.Minute,
					Usage:   "time between refreshes",
				},
				&cli.StringFlag{
					Name:    "panel",
					EnvVars: []string{"PINUP_PANEL"},
					Value:   "file",
					Usage:   "output panel, epd or file",
				},
				&cli.StringFlag{
					Name:    "output",
					EnvVars: []string{"PINUP_OUTPUT"},
					Value:   filepath.Join(cwd, "frame.png"),
					Usage:   "PNG written by the file panel",
				},
				&cli.StringFlag{
					Name:    "metrics-addr",
					EnvVars: []string{"PINUP_METRICS_ADDR"},
					Usage:   "serve the frame and metrics on this address",
				},
				&cli.StringFlag{
					Name:    "battery",
					EnvVars: []string{"PINUP_BATTERY"},
					Value:   "none",
					Usage:   "battery source: none, fixed:VOLTS, sysfs:FILE or ads1115[:CHANNEL]",
				},
				rotationFlag,
			},
			Action: run,
		},
		{
			Name:        "render",
			Usage:       "Compose a single frame and write it as a PNG",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "temp",
					Usage: "temperature in °C, omitted if empty",
				},
				&cli.StringFlag{
					Name:  "feels-like",
					Usage: "apparent temperature in °C, omitted if empty",
				},
				&cli.StringFlag{
					Name:  "icon",
					Usage: "weather icon code, e.g. 10d",
				},
				&cli.IntFlag{
					Name:  "wind",
					Usage: "wind speed in mph",
				},
				&cli.StringFlag{
					Name:  "at",
					Usage: "observation time as RFC 3339, defaults to now",
				},
				&cli.Float64Flag{
					Name:  "volts",
					Value: compose.FullVolts,
					Usage: "battery voltage",
				},
				rotationFlag,
			},
			Action: render,
		},
		{
			Name:        "pack",
			Usage:       "Convert an image into a paletted glyph strip",
			Description: "",
			ArgsUsage:   "SOURCE BMP",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "axis",
					Value: "rows",
					Usage: "strip axis, rows or columns",
				},
				&cli.StringFlag{
					Name:     "markers",
					Required: true,
					Usage:    "comma separated glyph boundaries",
				},
				&cli.StringFlag{
					Name:  "keys",
					Usage: "comma separated symbol keys, defaults to ordinals",
				},
			},
			Action: pack,
		},
		{
			Name:        "inspect",
			Usage:       "List the shipped glyph tables",
			Description: "",
			Action:      inspect,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
