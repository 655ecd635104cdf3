package schedule

// ServiceType identifies a bookable service for time-policy purposes.
type ServiceType string

const (
	ServiceRehabilitacion      ServiceType = "rehabilitacion"
	ServiceHidroterapia        ServiceType = "hidroterapia"
	ServiceHidroRehabilitacion ServiceType = "hidroterapia_rehabilitacion"
	ServiceDomicilio           ServiceType = "rehabilitacion_domicilio"
)

// IsHomeVisit reports whether the service takes place at the client's home.
// Home visits block the entire center while the practitioner is away.
func (t ServiceType) IsHomeVisit() bool {
	return t == ServiceDomicilio
}

// RestMinutes returns the mandatory idle buffer appended after a service
// before its resource is considered free again. The pool needs draining and
// cleaning after hydrotherapy; everything else frees up immediately. Unknown
// types get no buffer.
//
// The buffer is one-directional: it extends the occupied end of an existing
// booking, it never delays the start check of a candidate.
func RestMinutes(t ServiceType) int {
	if t == ServiceHidroterapia {
		return 15
	}
	return 0
}
