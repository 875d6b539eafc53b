package sgp4

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ISS, CSS and a Fregat debris piece as served by CelesTrak.
const ommJSONExample = `
[{"OBJECT_NAME":"ISS (ZARYA)","OBJECT_ID":"1998-067A","EPOCH":"2025-05-26T13:06:57.824640","MEAN_MOTION":15.4975272,"ECCENTRICITY":0.0002241,"INCLINATION":51.6382,"RA_OF_ASC_NODE":54.2937,"ARG_OF_PERICENTER":147.4648,"MEAN_ANOMALY":271.6158,"EPHEMERIS_TYPE":0,"CLASSIFICATION_TYPE":"U","NORAD_CAT_ID":25544,"ELEMENT_SET_NO":999,"REV_AT_EPOCH":51180,"BSTAR":0.00019155,"MEAN_MOTION_DOT":0.00010397,"MEAN_MOTION_DDOT":0},{"OBJECT_NAME":"CSS (TIANHE)","OBJECT_ID":"2021-035A","EPOCH":"2025-05-25T23:00:12.248640","MEAN_MOTION":15.62412324,"ECCENTRICITY":0.0005017,"INCLINATION":41.463,"RA_OF_ASC_NODE":155.4996,"ARG_OF_PERICENTER":337.345,"MEAN_ANOMALY":22.7167,"EPHEMERIS_TYPE":0,"CLASSIFICATION_TYPE":"U","NORAD_CAT_ID":48274,"ELEMENT_SET_NO":999,"REV_AT_EPOCH":23268,"BSTAR":0.00015624,"MEAN_MOTION_DOT":0.00013949,"MEAN_MOTION_DDOT":0},{"OBJECT_NAME":"FREGAT DEB","OBJECT_ID":"2011-037PF","EPOCH":"2025-05-19T00:59:35.639808","MEAN_MOTION":12.28834273,"ECCENTRICITY":0.0869949,"INCLINATION":51.6315,"RA_OF_ASC_NODE":92.6347,"ARG_OF_PERICENTER":128.5677,"MEAN_ANOMALY":239.6424,"EPHEMERIS_TYPE":0,"CLASSIFICATION_TYPE":"U","NORAD_CAT_ID":49271,"ELEMENT_SET_NO":999,"REV_AT_EPOCH":17632,"BSTAR":0.03654,"MEAN_MOTION_DOT":0.00014961,"MEAN_MOTION_DDOT":0}]
`

const issTLEMatchingOMM = `ISS (ZARYA)
1 25544U 98067A   25146.54650260  .00010397  00000+0  19155-3 0  9999
2 25544  51.6382  54.2937 0002241 147.4648 271.6158 15.49752720511807`

func TestParseOMMs(t *testing.T) {
	omms, err := ParseOMMs([]byte(ommJSONExample))
	require.NoError(t, err)
	require.Len(t, omms, 3)

	iss := omms[0]
	assert.Equal(t, "ISS (ZARYA)", iss.ObjectName)
	assert.Equal(t, 25544, iss.NoradCatID)
	assert.Equal(t, "2025-05-26T13:06:57.824640", iss.EpochStr)
	assert.Equal(t, 15.4975272, iss.MeanMotion)
	assert.Equal(t, 0.03654, omms[2].BStar)

	_, err = ParseOMMs([]byte(`{"OBJECT_NAME":"not an array"}`))
	assert.Error(t, err)
}

func TestParseOMMEpoch(t *testing.T) {
	tests := []struct {
		epoch   string
		want    time.Time
		wantErr bool
	}{
		{"2024-03-16T12:22:20.979840Z", time.Date(2024, 3, 16, 12, 22, 20, 979840000, time.UTC), false},
		{"2025-01-01T00:00:00Z", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"2025-05-26T13:06:57.824640", time.Date(2025, 5, 26, 13, 6, 57, 824640000, time.UTC), false},
		{"2023-12-31T23:59:59.123", time.Date(2023, 12, 31, 23, 59, 59, 123000000, time.UTC), false},
		{"2023-12-31T23:59:59", time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), false},
		{"2024-03-16T14:22:20.979840+02:00", time.Date(2024, 3, 16, 12, 22, 20, 979840000, time.UTC), false},
		{"NOT_A_DATE", time.Time{}, true},
		{"2025-05-26", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.epoch, func(t *testing.T) {
			got, err := parseOMMEpoch(tt.epoch)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestOMMElementsMatchTLE(t *testing.T) {
	omms, err := ParseOMMs([]byte(ommJSONExample))
	require.NoError(t, err)
	fromOMM, err := omms[0].Elements()
	require.NoError(t, err)

	tle, err := ParseTLE(issTLEMatchingOMM)
	require.NoError(t, err)
	fromTLE, err := tle.Elements()
	require.NoError(t, err)

	// One nanosecond is about 1.2e-14 day.
	assert.InDelta(t, fromTLE.Epoch, fromOMM.Epoch, 1e-9)
	fromOMM.Epoch = fromTLE.Epoch
	assert.Equal(t, fromTLE, fromOMM)

	epoch, err := omms[0].EpochTime()
	require.NoError(t, err)
	assert.WithinDuration(t, tle.EpochTime(), epoch, time.Microsecond)

	p, err := omms[0].NewPropagator()
	require.NoError(t, err)
	pos, vel := p.Propagate(90)
	eci, err := tle.FindPosition(90)
	require.NoError(t, err)
	assert.Equal(t, eci.Position, pos)
	assert.Equal(t, eci.Velocity, vel)
}

func TestOMMElements(t *testing.T) {
	omms, err := ParseOMMs([]byte(ommJSONExample))
	require.NoError(t, err)

	for _, o := range omms {
		t.Run(o.ObjectName, func(t *testing.T) {
			p, err := o.NewPropagator()
			require.NoError(t, err)
			assert.Equal(t, NearEarth, p.Algorithm())
			assert.Equal(t, o.BStar, p.InitialElements().Bstar)
			assert.False(t, p.InitialElements().Geostationary())

			pos, _, err := p.PropagateChecked(90)
			require.NoError(t, err)
			assert.Greater(t, pos.Norm(), 6378.135)
		})
	}
}

func TestOMMElementsInvalid(t *testing.T) {
	omms, err := ParseOMMs([]byte(ommJSONExample))
	require.NoError(t, err)

	tests := []struct {
		name   string
		modify func(o *OMM)
		sgp    bool
	}{
		{"bad epoch", func(o *OMM) { o.EpochStr = "yesterday" }, false},
		{"zero mean motion", func(o *OMM) { o.MeanMotion = 0 }, true},
		{"hyperbolic", func(o *OMM) { o.Eccentricity = 1.2 }, true},
		{"negative eccentricity", func(o *OMM) { o.Eccentricity = -0.1 }, true},
		{"inclination", func(o *OMM) { o.Inclination = 200 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := omms[0]
			tt.modify(&o)
			_, err := o.NewPropagator()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "1998-067A")
			var sgpErr *SGPError
			assert.Equal(t, tt.sgp, errors.As(err, &sgpErr))
		})
	}
}
