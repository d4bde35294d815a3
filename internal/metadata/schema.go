package metadata

import "github.com/hwinj/hwinj/internal/ligolw"

// Identity values given to synthesized rows.
const (
	emptyProcessID    = "process:process_id:0"
	emptySimulationID = "sim_inspiral:simulation_id:0"
)

// Column names of the fields interpreted by the corrector.
const (
	colProcessID    = "process_id"
	colSimulationID = "simulation_id"
	colLongitude    = "longitude"
)

// timeField is a time stored as a pair of integer columns.
type timeField struct {
	sec string
	ns  string
}

var (
	geocentEndTime = timeField{sec: "geocent_end_time", ns: "geocent_end_time_ns"}
	hEndTime       = timeField{sec: "h_end_time", ns: "h_end_time_ns"}
	lEndTime       = timeField{sec: "l_end_time", ns: "l_end_time_ns"}
)

// simInspiralColumns is the full sim_inspiral table layout used for synthesized documents.
var simInspiralColumns = []ligolw.Column{
	{Name: "process_id", Type: "ilwd:char"},
	{Name: "waveform", Type: "lstring"},
	{Name: "geocent_end_time", Type: "int_4s"},
	{Name: "geocent_end_time_ns", Type: "int_4s"},
	{Name: "h_end_time", Type: "int_4s"},
	{Name: "h_end_time_ns", Type: "int_4s"},
	{Name: "l_end_time", Type: "int_4s"},
	{Name: "l_end_time_ns", Type: "int_4s"},
	{Name: "g_end_time", Type: "int_4s"},
	{Name: "g_end_time_ns", Type: "int_4s"},
	{Name: "t_end_time", Type: "int_4s"},
	{Name: "t_end_time_ns", Type: "int_4s"},
	{Name: "v_end_time", Type: "int_4s"},
	{Name: "v_end_time_ns", Type: "int_4s"},
	{Name: "end_time_gmst", Type: "real_8"},
	{Name: "source", Type: "lstring"},
	{Name: "mass1", Type: "real_4"},
	{Name: "mass2", Type: "real_4"},
	{Name: "mchirp", Type: "real_4"},
	{Name: "eta", Type: "real_4"},
	{Name: "distance", Type: "real_4"},
	{Name: "longitude", Type: "real_4"},
	{Name: "latitude", Type: "real_4"},
	{Name: "inclination", Type: "real_4"},
	{Name: "coa_phase", Type: "real_4"},
	{Name: "polarization", Type: "real_4"},
	{Name: "psi0", Type: "real_4"},
	{Name: "psi3", Type: "real_4"},
	{Name: "alpha", Type: "real_4"},
	{Name: "alpha1", Type: "real_4"},
	{Name: "alpha2", Type: "real_4"},
	{Name: "alpha3", Type: "real_4"},
	{Name: "alpha4", Type: "real_4"},
	{Name: "alpha5", Type: "real_4"},
	{Name: "alpha6", Type: "real_4"},
	{Name: "beta", Type: "real_4"},
	{Name: "spin1x", Type: "real_4"},
	{Name: "spin1y", Type: "real_4"},
	{Name: "spin1z", Type: "real_4"},
	{Name: "spin2x", Type: "real_4"},
	{Name: "spin2y", Type: "real_4"},
	{Name: "spin2z", Type: "real_4"},
	{Name: "theta0", Type: "real_4"},
	{Name: "phi0", Type: "real_4"},
	{Name: "f_lower", Type: "real_4"},
	{Name: "f_final", Type: "real_4"},
	{Name: "eff_dist_h", Type: "real_4"},
	{Name: "eff_dist_l", Type: "real_4"},
	{Name: "eff_dist_g", Type: "real_4"},
	{Name: "eff_dist_t", Type: "real_4"},
	{Name: "eff_dist_v", Type: "real_4"},
	{Name: "numrel_mode_min", Type: "int_4s"},
	{Name: "numrel_mode_max", Type: "int_4s"},
	{Name: "numrel_data", Type: "lstring"},
	{Name: "amp_order", Type: "int_4s"},
	{Name: "taper", Type: "lstring"},
	{Name: "bandpass", Type: "int_4s"},
	{Name: "simulation_id", Type: "ilwd:char"},
}
