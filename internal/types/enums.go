package types

// ConditionOperator defines the comparison a feasibility check applies.
type ConditionOperator string

const (
	OpGreaterThan ConditionOperator = ">"
	OpLessThan    ConditionOperator = "<"
)

// Severity classifies a triggered condition. Only fatal reasons make a
// location infeasible.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityWarning Severity = "warning"
)

// ReasonCode identifies a triggered feasibility condition.
type ReasonCode string

const (
	ReasonInsufficientSunlight ReasonCode = "insufficient_sunlight"
	ReasonHighTemperature      ReasonCode = "high_temperature"
	ReasonHighCloudCover       ReasonCode = "high_cloud_cover"
	ReasonHighWindSpeed        ReasonCode = "high_wind_speed"
)

// CheckName identifies one of the four feasibility checks.
type CheckName string

const (
	CheckSolarIrradiance CheckName = "solar_irradiance"
	CheckTemperature     CheckName = "temperature"
	CheckCloudCover      CheckName = "cloud_cover"
	CheckWindSpeed       CheckName = "wind_speed"
)

// SessionState is the position of a session in the guided check flow.
type SessionState string

const (
	SessionIdle             SessionState = "idle"
	SessionLocationResolved SessionState = "location_resolved"
	SessionDataFetched      SessionState = "data_fetched"
	SessionEvaluated        SessionState = "evaluated"
	SessionEnded            SessionState = "ended"
)

// SessionTrigger names an event that moves a session between states.
type SessionTrigger string

const (
	TriggerResolveLocation SessionTrigger = "resolve_location"
	TriggerFetchData       SessionTrigger = "fetch_data"
	TriggerEvaluate        SessionTrigger = "evaluate"
	TriggerSelectPanels    SessionTrigger = "select_panels"
	TriggerEnd             SessionTrigger = "end"
	TriggerRestart         SessionTrigger = "restart"
)
