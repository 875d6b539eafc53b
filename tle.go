package sgp4

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/julian"
)

const tleLineLength = 69

// TLE represents a Two-Line Element set used for satellite tracking
type TLE struct {
	// Line 0 (optional name)
	Name string

	// Line 1 fields
	SatelliteNumber int
	Classification  rune
	International   string // International Designator
	EpochYear       int
	EpochDay        float64
	MeanMotionDot   float64
	MeanMotionDot2  float64
	Bstar           float64
	ElementNumber   int
	CheckSum1       int

	// Line 2 fields
	Inclination      float64
	RightAscension   float64
	Eccentricity     float64
	ArgOfPerigee     float64
	MeanAnomaly      float64
	MeanMotion       float64
	RevolutionNumber int
	CheckSum2        int
}

// EpochTime returns the TLE epoch in UTC, rounded to the nanosecond.
func (tle *TLE) EpochTime() time.Time {
	day, frac := math.Modf(tle.EpochDay)
	midnight := time.Date(tle.EpochYear, time.January, int(day), 0, 0, 0, 0, time.UTC)
	return midnight.Add(time.Duration(math.Round(frac * float64(24*time.Hour))))
}

// EpochJD returns the TLE epoch as a Julian Day (UTC).
func (tle *TLE) EpochJD() float64 {
	// Day 1.0 is January 1 00:00, the Gregorian conversion is linear in the day.
	return julian.CalendarGregorianToJD(tle.EpochYear, 1, tle.EpochDay)
}

// Elements converts the TLE fields to SGP4 units: angles to radians and mean
// motion from revolutions per day to radians per minute.
func (tle *TLE) Elements() (Elements, error) {
	return elementsFromTLEUnits(tle.EpochJD(), tle.MeanMotion, tle.Eccentricity, tle.Inclination,
		tle.RightAscension, tle.ArgOfPerigee, tle.MeanAnomaly, tle.Bstar)
}

// NewPropagator initializes a propagator from the TLE, WGS72 unless a
// gravity option says otherwise.
func (tle *TLE) NewPropagator(opts ...Option) (*Propagator, error) {
	el, err := tle.Elements()
	if err != nil {
		return nil, errors.Wrapf(err, "TLE %d", tle.SatelliteNumber)
	}
	return New(el, opts...), nil
}

// ParseTLE parses a two or three line (leading name) element set.
func ParseTLE(input string) (*TLE, error) {
	lines := strings.Split(strings.TrimSpace(input), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	if len(lines) < 2 || len(lines) > 3 {
		return nil, errors.New("invalid TLE: must contain 2 or 3 lines")
	}

	tle := &TLE{}
	if len(lines) == 3 {
		tle.Name = lines[0]
		lines = lines[1:]
	}
	for i, line := range lines {
		if len(line) != tleLineLength {
			return nil, errors.Errorf("invalid TLE: line %d must be %d characters, got %d", i+1, tleLineLength, len(line))
		}
	}

	if err := tle.parseLine1(lines[0]); err != nil {
		return nil, errors.Wrap(err, "error parsing line 1")
	}
	if err := tle.parseLine2(lines[1]); err != nil {
		return nil, errors.Wrap(err, "error parsing line 2")
	}
	for i, want := range []int{tle.CheckSum1, tle.CheckSum2} {
		if got := checksum(lines[i]); got != want {
			return nil, errors.Errorf("checksum mismatch in line %d: expected %d (from TLE), got %d (calculated)", i+1, want, got)
		}
	}
	return tle, nil
}

// columns reads fixed width fields out of a TLE line. The first failure
// sticks and later reads return zero.
type columns struct {
	line string
	err  error
}

// field returns the trimmed text of the 1-based inclusive column range.
func (c *columns) field(first, last int) string {
	return strings.TrimSpace(c.line[first-1 : last])
}

func (c *columns) int(first, last int, name string) int {
	if c.err != nil {
		return 0
	}
	v, err := strconv.Atoi(c.field(first, last))
	if err != nil {
		c.err = errors.Wrapf(err, "invalid %s", name)
	}
	return v
}

func (c *columns) float(first, last int, name string) float64 {
	if c.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(c.field(first, last), 64)
	if err != nil {
		c.err = errors.Wrapf(err, "invalid %s ('%s')", name, c.line[first-1:last])
	}
	return v
}

// decimal reads a field with an assumed leading decimal point, "0003104"
// is 0.0003104.
func (c *columns) decimal(first, last int, name string) float64 {
	if c.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat("0."+c.field(first, last), 64)
	if err != nil {
		c.err = errors.Wrapf(err, "invalid %s ('%s')", name, c.line[first-1:last])
	}
	return v
}

// exponential reads the packed " SNNNNN-E" form, an assumed decimal mantissa
// followed by a signed power of ten: "-11606-4" is -0.11606e-4.
func (c *columns) exponential(first, last int, name string) float64 {
	if c.err != nil {
		return 0
	}
	raw := c.line[first-1 : last]
	mantissa := strings.TrimSpace(raw[:len(raw)-2])
	sign := ""
	if mantissa != "" && (mantissa[0] == '-' || mantissa[0] == '+') {
		sign, mantissa = mantissa[:1], mantissa[1:]
	}
	m, err := strconv.ParseFloat(sign+"0."+mantissa, 64)
	if err != nil {
		c.err = errors.Wrapf(err, "invalid %s mantissa ('%s')", name, raw)
		return 0
	}
	exp, err := strconv.Atoi(strings.TrimSpace(raw[len(raw)-2:]))
	if err != nil {
		c.err = errors.Wrapf(err, "invalid %s exponent ('%s')", name, raw)
		return 0
	}
	return m * math.Pow(10, float64(exp))
}

func (tle *TLE) parseLine1(line string) error {
	if line[0] != '1' {
		return errors.New("line 1 must begin with '1'")
	}
	c := &columns{line: line}
	tle.SatelliteNumber = c.int(3, 7, "satellite number")
	tle.Classification = rune(line[7])
	tle.International = c.field(10, 17)

	// Two digit years from 57 on are 19xx.
	year := c.int(19, 20, "epoch year")
	if year < 57 {
		tle.EpochYear = 2000 + year
	} else {
		tle.EpochYear = 1900 + year
	}
	tle.EpochDay = c.float(21, 32, "epoch day")
	tle.MeanMotionDot = c.float(34, 43, "mean motion dot")
	tle.MeanMotionDot2 = c.exponential(45, 52, "mean motion dot 2")
	tle.Bstar = c.exponential(54, 61, "B*")
	tle.ElementNumber = c.int(65, 68, "element number")
	tle.CheckSum1 = c.int(69, 69, "checksum")
	return c.err
}

func (tle *TLE) parseLine2(line string) error {
	if line[0] != '2' {
		return errors.New("line 2 must begin with '2'")
	}
	c := &columns{line: line}
	satNum := c.int(3, 7, "satellite number in line 2")
	if c.err == nil && satNum != tle.SatelliteNumber {
		return errors.Errorf("satellite numbers do not match between lines (%d vs %d)", tle.SatelliteNumber, satNum)
	}
	tle.Inclination = c.float(9, 16, "inclination")
	tle.RightAscension = c.float(18, 25, "right ascension")
	tle.Eccentricity = c.decimal(27, 33, "eccentricity")
	tle.ArgOfPerigee = c.float(35, 42, "argument of perigee")
	tle.MeanAnomaly = c.float(44, 51, "mean anomaly")
	tle.MeanMotion = c.float(53, 63, "mean motion")
	tle.RevolutionNumber = c.int(64, 68, "revolution number")
	tle.CheckSum2 = c.int(69, 69, "checksum")
	return c.err
}

// checksum is the modulo 10 sum of the digits in the first 68 columns, a
// minus sign counting as 1.
func checksum(line string) int {
	sum := 0
	for _, ch := range line[:tleLineLength-1] {
		switch {
		case ch >= '0' && ch <= '9':
			sum += int(ch - '0')
		case ch == '-':
			sum++
		}
	}
	return sum % 10
}
