package testkit

import "goeffect/domain/dataset"

// Motor-trend road test data, 32 cars. mpg/wt/hp are numeric, transmission
// and cylinders are factors. Transmission reference level is "automatic".
var (
	motorTrendMPG = []float64{
		21.0, 21.0, 22.8, 21.4, 18.7, 18.1, 14.3, 24.4, 22.8, 19.2,
		17.8, 16.4, 17.3, 15.2, 10.4, 10.4, 14.7, 32.4, 30.4, 33.9,
		21.5, 15.5, 15.2, 13.3, 19.2, 27.3, 26.0, 30.4, 15.8, 19.7,
		15.0, 21.4,
	}
	motorTrendWT = []float64{
		2.620, 2.875, 2.320, 3.215, 3.440, 3.460, 3.570, 3.190, 3.150, 3.440,
		3.440, 4.070, 3.730, 3.780, 5.250, 5.424, 5.345, 2.200, 1.615, 1.835,
		2.465, 3.520, 3.435, 3.840, 3.845, 1.935, 2.140, 1.513, 3.170, 2.770,
		3.570, 2.780,
	}
	motorTrendHP = []float64{
		110, 110, 93, 110, 175, 105, 245, 62, 95, 123,
		123, 180, 180, 180, 205, 215, 230, 66, 52, 65,
		97, 150, 150, 245, 175, 66, 91, 113, 264, 175,
		335, 109,
	}
	motorTrendAM = []float64{
		1, 1, 1, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 1, 1, 1,
		0, 0, 0, 0, 0, 1, 1, 1, 1, 1,
		1, 1,
	}
	// cylinder count mapped to level codes: 4 -> 0, 6 -> 1, 8 -> 2
	motorTrendCyl = []float64{
		1, 1, 0, 1, 2, 1, 2, 0, 0, 1,
		1, 2, 2, 2, 2, 2, 2, 0, 0, 0,
		0, 2, 2, 2, 2, 0, 0, 0, 2, 1,
		2, 0,
	}
)

// MotorTrend returns the fixture as a dataset table.
func MotorTrend() *dataset.Table {
	copyOf := func(v []float64) []float64 {
		out := make([]float64, len(v))
		copy(out, v)
		return out
	}
	t, err := dataset.NewTable([]dataset.Column{
		{Name: "mpg", Kind: dataset.KindNumeric, Values: copyOf(motorTrendMPG)},
		{Name: "wt", Kind: dataset.KindNumeric, Values: copyOf(motorTrendWT)},
		{Name: "hp", Kind: dataset.KindNumeric, Values: copyOf(motorTrendHP)},
		{Name: "am", Kind: dataset.KindFactor, Values: copyOf(motorTrendAM), Levels: []string{"automatic", "manual"}},
		{Name: "cyl", Kind: dataset.KindFactor, Values: copyOf(motorTrendCyl), Levels: []string{"4", "6", "8"}},
	})
	if err != nil {
		panic(err)
	}
	return t
}
