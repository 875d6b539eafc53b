package sgp4

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/julian"
)

// OMM is one CCSDS Orbit Mean-elements Message in the JSON form published by
// space-track.org and CelesTrak. Angles are in degrees, mean motion in
// revolutions per day.
type OMM struct {
	ObjectName         string  `json:"OBJECT_NAME"`
	ObjectID           string  `json:"OBJECT_ID"` // "1998-067A"
	EpochStr           string  `json:"EPOCH"`     // ISO 8601, UTC when no zone is given
	MeanMotion         float64 `json:"MEAN_MOTION"`
	Eccentricity       float64 `json:"ECCENTRICITY"`
	Inclination        float64 `json:"INCLINATION"`
	RAOfAscNode        float64 `json:"RA_OF_ASC_NODE"`
	ArgOfPericenter    float64 `json:"ARG_OF_PERICENTER"`
	MeanAnomaly        float64 `json:"MEAN_ANOMALY"`
	EphemerisType      int     `json:"EPHEMERIS_TYPE"`
	ClassificationType string  `json:"CLASSIFICATION_TYPE"`
	NoradCatID         int     `json:"NORAD_CAT_ID"`
	ElementSetNo       int     `json:"ELEMENT_SET_NO"`
	RevAtEpoch         int     `json:"REV_AT_EPOCH"`
	BStar              float64 `json:"BSTAR"`            // 1/earth radii
	MeanMotionDot      float64 `json:"MEAN_MOTION_DOT"`  // rev/day^2, already halved
	MeanMotionDDot     float64 `json:"MEAN_MOTION_DDOT"` // rev/day^3, already divided by 6

	CenterName        string `json:"CENTER_NAME,omitempty"`
	RefFrame          string `json:"REF_FRAME,omitempty"`
	TimeSystem        string `json:"TIME_SYSTEM,omitempty"`
	MeanElementTheory string `json:"MEAN_ELEMENT_THEORY,omitempty"`
}

// ParseOMMs parses a JSON array of OMM objects.
func ParseOMMs(jsonData []byte) ([]OMM, error) {
	var omms []OMM
	if err := json.Unmarshal(jsonData, &omms); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling OMM JSON")
	}
	return omms, nil
}

// Zoned layouts first; the bare ones are read as UTC.
var (
	ommZonedLayouts = []string{time.RFC3339Nano, time.RFC3339}
	ommBareLayouts  = []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"}
)

// parseOMMEpoch reads an OMM EPOCH, with or without a zone suffix.
func parseOMMEpoch(s string) (time.Time, error) {
	for _, layout := range ommZonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	var err error
	for _, layout := range ommBareLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(err, "error parsing OMM epoch %q", s)
}

// EpochTime returns the OMM epoch in UTC.
func (o *OMM) EpochTime() (time.Time, error) {
	return parseOMMEpoch(o.EpochStr)
}

// Elements converts the OMM mean elements to SGP4 units.
func (o *OMM) Elements() (Elements, error) {
	epoch, err := o.EpochTime()
	if err != nil {
		return Elements{}, errors.Wrapf(err, "OMM %s", o.ObjectID)
	}
	el, err := elementsFromTLEUnits(julian.TimeToJD(epoch), o.MeanMotion, o.Eccentricity, o.Inclination,
		o.RAOfAscNode, o.ArgOfPericenter, o.MeanAnomaly, o.BStar)
	if err != nil {
		return Elements{}, errors.Wrapf(err, "OMM %s", o.ObjectID)
	}
	return el, nil
}

// NewPropagator initializes a propagator from the OMM, WGS72 unless a
// gravity option says otherwise.
func (o *OMM) NewPropagator(opts ...Option) (*Propagator, error) {
	el, err := o.Elements()
	if err != nil {
		return nil, err
	}
	return New(el, opts...), nil
}
