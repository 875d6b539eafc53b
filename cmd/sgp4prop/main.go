package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	sgp4 "github.com/akhenakh/sdp4"
	"github.com/akhenakh/sdp4/internal/metrics"
)

// Ephemeris line, one state vector.
type record struct {
	Satellite int       `json:"satellite"`
	Name      string    `json:"name,omitempty"`
	Tsince    float64   `json:"tsince_min"`
	Position  []float64 `json:"position_km"`
	Velocity  []float64 `json:"velocity_km_s"`
	Error     string    `json:"error,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "sgp4prop [element files...]",
		Short: "Propagate TLE or OMM element sets with SGP4/SDP4",
		Long: `sgp4prop reads two or three line element sets (or an OMM JSON array with
--omm) and prints TEME position (km) and velocity (km/s) from --start to --stop
minutes since each element epoch, every --step minutes.`,
		Args: cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, args, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.String("config", "", "config file (yaml, toml or json)")
	f.Float64("start", 0, "start time, minutes since epoch")
	f.Float64("stop", 1440, "stop time, minutes since epoch")
	f.Float64("step", 360, "step, minutes")
	f.String("gravity", "wgs72", "gravity model (wgs72 or wgs84)")
	f.Bool("json", false, "write JSON lines instead of a table")
	f.Bool("omm", false, "inputs are OMM JSON arrays")
	f.Bool("check", false, "report decayed or degenerate states")
	f.String("pushgateway", "", "Prometheus Pushgateway URL for run metrics")
	f.String("metrics-addr", "", "after the run, serve metrics on this address until interrupted")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	v.SetEnvPrefix("SGP4PROP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfg := v.GetString("config"); cfg != "" {
		v.SetConfigFile(cfg)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config %s", cfg)
		}
	}
	if v.GetFloat64("step") <= 0 {
		return errors.New("step must be positive")
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// elementSource is a parsed TLE or OMM.
type elementSource interface {
	Elements() (sgp4.Elements, error)
}

// satellite is one element set to propagate.
type satellite struct {
	number int
	name   string
	src    elementSource
}

// epochOffsets returns start, start+step, ... up to stop inclusive. The
// offsets are computed from an index so a fractional step still reaches stop.
func epochOffsets(start, stop, step float64) []float64 {
	if step <= 0 || stop < start {
		return nil
	}
	n := int(math.Floor((stop-start)/step + 1e-9))
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, start+float64(i)*step)
	}
	return out
}

func run(ctx context.Context, v *viper.Viper, files []string, out io.Writer) error {
	logger := newLogger(v.GetString("log-level"))

	grav, err := sgp4.GravityModel(v.GetString("gravity"))
	if err != nil {
		return err
	}

	var sats []satellite
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(err, "reading elements")
		}
		var s []satellite
		if v.GetBool("omm") {
			s, err = parseOMMFile(data)
		} else {
			s, err = parseTLEFile(string(data))
		}
		if err != nil {
			return errors.Wrapf(err, "parsing %s", path)
		}
		sats = append(sats, s...)
	}
	logger.Info("loaded element sets", "count", len(sats), "gravity", v.GetString("gravity"))

	rec := metrics.NewRecorder()
	start, stop, step := v.GetFloat64("start"), v.GetFloat64("stop"), v.GetFloat64("step")
	enc := json.NewEncoder(out)
	asJSON := v.GetBool("json")
	check := v.GetBool("check")

	offsets := epochOffsets(start, stop, step)
	for _, sat := range sats {
		el, err := sat.src.Elements()
		if err != nil {
			logger.Error("skipping element set", "satellite", sat.number, "error", err)
			continue
		}
		p := sgp4.New(el, sgp4.WithGravity(grav), sgp4.WithLogger(logger))
		logger.Debug("element set",
			"satellite", sat.number,
			"algorithm", p.Algorithm(),
			"resonance", p.Resonance(),
			"geostationary", el.Geostationary())
		if !asJSON {
			fmt.Fprintf(out, "%d xx %s\n", sat.number, p.Algorithm())
		}
		for _, ts := range offsets {
			r := record{Satellite: sat.number, Name: sat.name, Tsince: ts}
			var pos, vel sgp4.Vector
			if check {
				pos, vel, err = p.PropagateChecked(ts)
				if err != nil {
					r.Error = err.Error()
				}
			} else {
				pos, vel = p.Propagate(ts)
			}
			r.Position, r.Velocity = finite(pos), finite(vel)

			if asJSON {
				if err := enc.Encode(r); err != nil {
					return errors.Wrap(err, "writing ephemeris")
				}
				continue
			}
			fmt.Fprintf(out, " %16.8f %16.8f %16.8f %16.8f %12.9f %12.9f %12.9f\n",
				ts, pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z)
			if r.Error != "" {
				fmt.Fprintf(out, "# %s\n", r.Error)
			}
		}
		rec.Observe(p)
		logger.Debug("propagated", "satellite", sat.number, "stats", fmt.Sprintf("%+v", p.Stats()))
	}

	if url := v.GetString("pushgateway"); url != "" {
		if err := rec.Push(ctx, url, "sgp4prop"); err != nil {
			logger.Error("metrics push failed", "error", err)
			return err
		}
	}

	if addr := v.GetString("metrics-addr"); addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return errors.Wrap(err, "metrics listener")
		}
		logger.Info("serving metrics", "addr", ln.Addr().String())
		return rec.Serve(ctx, ln)
	}
	return nil
}

// parseTLEFile splits a file into element sets: a line starting with "1 "
// followed by one starting with "2 ", optionally preceded by a name line.
func parseTLEFile(data string) ([]satellite, error) {
	var lines []string
	for _, l := range strings.Split(data, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" || strings.HasPrefix(l, "#") {
			continue
		}
		lines = append(lines, l)
	}

	var sats []satellite
	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], "1 ") {
			continue
		}
		if i+1 >= len(lines) || !strings.HasPrefix(lines[i+1], "2 ") {
			return nil, errors.Errorf("line %q has no matching line 2", lines[i])
		}
		set := lines[i] + "\n" + lines[i+1]
		if i > 0 && !strings.HasPrefix(lines[i-1], "1 ") && !strings.HasPrefix(lines[i-1], "2 ") {
			set = lines[i-1] + "\n" + set
		}
		tle, err := sgp4.ParseTLE(set)
		if err != nil {
			return nil, err
		}
		sats = append(sats, satellite{number: tle.SatelliteNumber, name: tle.Name, src: tle})
		i++
	}
	if len(sats) == 0 {
		return nil, errors.New("no element sets found")
	}
	return sats, nil
}

func parseOMMFile(data []byte) ([]satellite, error) {
	omms, err := sgp4.ParseOMMs(data)
	if err != nil {
		return nil, err
	}
	if len(omms) == 0 {
		return nil, errors.New("no element sets found")
	}
	sats := make([]satellite, 0, len(omms))
	for i := range omms {
		o := &omms[i]
		sats = append(sats, satellite{number: o.NoradCatID, name: o.ObjectName, src: o})
	}
	return sats, nil
}

// finite returns v as a slice, nil when a component is NaN or infinite.
func finite(v sgp4.Vector) []float64 {
	s := v.Slice()
	for _, x := range s {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	}
	return s
}
