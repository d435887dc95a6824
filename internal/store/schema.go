package store

// Field is one named, typed column of a store schema.
type Field struct {
	Name string
	Kind Kind
}

// Schema is the fixed, ordered field list for one store kind. The first
// field is always the index timestamp. Partition file lines carry the
// fields in schema order, separated by commas, with absent values as
// empty tokens.
type Schema struct {
	Name   string
	Fields []Field

	byName map[string]int
}

// NewSchema builds a schema from an ordered field list.
func NewSchema(name string, fields ...Field) *Schema {
	s := &Schema{
		Name:   name,
		Fields: fields,
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		s.byName[f.Name] = i
	}
	return s
}

// Index returns the position of a field in the schema, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the schema contains the named field.
func (s *Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Well-known field names shared across store kinds.
const (
	FieldIndex         = "idx"
	FieldStart         = "start"
	FieldDelay         = "delay"
	FieldHumIn         = "hum_in"
	FieldTempIn        = "temp_in"
	FieldHumOut        = "hum_out"
	FieldTempOut       = "temp_out"
	FieldAbsPressure   = "abs_pressure"
	FieldRelPressure   = "rel_pressure"
	FieldPressureTrend = "pressure_trend"
	FieldWindAve       = "wind_ave"
	FieldWindGust      = "wind_gust"
	FieldWindGustT     = "wind_gust_t"
	FieldWindDir       = "wind_dir"
	FieldRain          = "rain"
	FieldRainDays      = "rain_days"
	FieldStatus        = "status"
	FieldIlluminance   = "illuminance"
	FieldUV            = "uv"
)

// RawSchema describes raw readings as delivered by the station decoder.
func RawSchema() *Schema {
	return NewSchema("raw",
		Field{FieldIndex, KindTime},
		Field{FieldDelay, KindInt},
		Field{FieldHumIn, KindInt},
		Field{FieldTempIn, KindFloat},
		Field{FieldHumOut, KindInt},
		Field{FieldTempOut, KindFloat},
		Field{FieldAbsPressure, KindFloat},
		Field{FieldWindAve, KindFloat},
		Field{FieldWindGust, KindFloat},
		Field{FieldWindDir, KindInt},
		Field{FieldRain, KindFloat},
		Field{FieldStatus, KindInt},
		Field{FieldIlluminance, KindFloat},
		Field{FieldUV, KindInt},
	)
}

// CalibSchema describes calibrated readings: raw fields plus the derived
// relative pressure.
func CalibSchema() *Schema {
	return NewSchema("calib",
		Field{FieldIndex, KindTime},
		Field{FieldDelay, KindInt},
		Field{FieldHumIn, KindInt},
		Field{FieldTempIn, KindFloat},
		Field{FieldHumOut, KindInt},
		Field{FieldTempOut, KindFloat},
		Field{FieldAbsPressure, KindFloat},
		Field{FieldRelPressure, KindFloat},
		Field{FieldWindAve, KindFloat},
		Field{FieldWindGust, KindFloat},
		Field{FieldWindDir, KindInt},
		Field{FieldRain, KindFloat},
		Field{FieldStatus, KindInt},
		Field{FieldIlluminance, KindFloat},
		Field{FieldUV, KindInt},
	)
}

// HourlySchema describes hourly summary records.
func HourlySchema() *Schema {
	return NewSchema("hourly",
		Field{FieldIndex, KindTime},
		Field{FieldHumIn, KindInt},
		Field{FieldTempIn, KindFloat},
		Field{FieldHumOut, KindInt},
		Field{FieldTempOut, KindFloat},
		Field{FieldAbsPressure, KindFloat},
		Field{FieldRelPressure, KindFloat},
		Field{FieldPressureTrend, KindFloat},
		Field{FieldWindAve, KindFloat},
		Field{FieldWindGust, KindFloat},
		Field{FieldWindDir, KindFloat},
		Field{FieldRain, KindFloat},
		Field{FieldIlluminance, KindFloat},
		Field{FieldUV, KindInt},
	)
}

// DailySchema describes daily summary records. Minima and maxima carry the
// timestamp of the originating sample in a companion "_t" field.
func DailySchema() *Schema {
	fields := []Field{
		{FieldIndex, KindTime},
		{FieldStart, KindTime},
	}
	for _, q := range []string{FieldHumOut, FieldTempOut, FieldHumIn, FieldTempIn, FieldAbsPressure, FieldRelPressure} {
		fields = append(fields,
			Field{q + "_ave", KindFloat},
			Field{q + "_min", KindFloat},
			Field{q + "_min_t", KindTime},
			Field{q + "_max", KindFloat},
			Field{q + "_max_t", KindTime},
		)
	}
	fields = append(fields,
		Field{FieldWindAve, KindFloat},
		Field{FieldWindGust, KindFloat},
		Field{FieldWindGustT, KindTime},
		Field{FieldWindDir, KindFloat},
		Field{FieldRain, KindFloat},
		Field{FieldIlluminance + "_ave", KindFloat},
		Field{FieldIlluminance + "_max", KindFloat},
		Field{FieldIlluminance + "_max_t", KindTime},
		Field{FieldUV + "_ave", KindFloat},
		Field{FieldUV + "_max", KindFloat},
		Field{FieldUV + "_max_t", KindTime},
	)
	return NewSchema("daily", fields...)
}

// MonthlySchema describes monthly summary records. Temperatures carry four
// extremes: lowest/highest of the daily minima and of the daily maxima.
func MonthlySchema() *Schema {
	fields := []Field{
		{FieldIndex, KindTime},
		{FieldStart, KindTime},
	}
	fields = append(fields,
		Field{FieldHumOut + "_ave", KindFloat},
		Field{FieldHumOut + "_min", KindFloat},
		Field{FieldHumOut + "_min_t", KindTime},
		Field{FieldHumOut + "_max", KindFloat},
		Field{FieldHumOut + "_max_t", KindTime},
	)
	for _, q := range []string{FieldTempOut, FieldTempIn} {
		fields = append(fields,
			Field{q + "_ave", KindFloat},
			Field{q + "_min_lo", KindFloat},
			Field{q + "_min_lo_t", KindTime},
			Field{q + "_min_hi", KindFloat},
			Field{q + "_min_hi_t", KindTime},
			Field{q + "_min_ave", KindFloat},
			Field{q + "_max_lo", KindFloat},
			Field{q + "_max_lo_t", KindTime},
			Field{q + "_max_hi", KindFloat},
			Field{q + "_max_hi_t", KindTime},
			Field{q + "_max_ave", KindFloat},
		)
	}
	for _, q := range []string{FieldHumIn, FieldAbsPressure, FieldRelPressure} {
		fields = append(fields,
			Field{q + "_ave", KindFloat},
			Field{q + "_min", KindFloat},
			Field{q + "_min_t", KindTime},
			Field{q + "_max", KindFloat},
			Field{q + "_max_t", KindTime},
		)
	}
	fields = append(fields,
		Field{FieldWindAve, KindFloat},
		Field{FieldWindGust, KindFloat},
		Field{FieldWindGustT, KindTime},
		Field{FieldWindDir, KindFloat},
		Field{FieldRain, KindFloat},
		Field{FieldRainDays, KindInt},
		Field{FieldIlluminance + "_ave", KindFloat},
		Field{FieldIlluminance + "_max_lo", KindFloat},
		Field{FieldIlluminance + "_max_lo_t", KindTime},
		Field{FieldIlluminance + "_max_hi", KindFloat},
		Field{FieldIlluminance + "_max_hi_t", KindTime},
		Field{FieldIlluminance + "_max_ave", KindFloat},
		Field{FieldUV + "_ave", KindFloat},
		Field{FieldUV + "_max_lo", KindFloat},
		Field{FieldUV + "_max_lo_t", KindTime},
		Field{FieldUV + "_max_hi", KindFloat},
		Field{FieldUV + "_max_hi_t", KindTime},
		Field{FieldUV + "_max_ave", KindFloat},
	)
	return NewSchema("monthly", fields...)
}
