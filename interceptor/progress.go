package interceptor

// call names a policy-affecting configuration call.
type call string

const (
	callRetryOperations call = "RetryOperations"
	callMaxAttempts     call = "MaxAttempts"
	callBackOffOptions  call = "BackOffOptions"
	callRetryPolicy     call = "RetryPolicy"
	callBackOffPolicy   call = "BackOffPolicy"
)

// route is the way the builder obtains its executor.
type route int

const (
	routeUnset      route = iota
	routeOperations       // caller-supplied operations
	routeTemplate         // the builder's default template, altered
)

// slot records how one policy of the default template was configured.
type slot int

const (
	slotDefault slot = iota
	slotShortcut
	slotCustom
)

// progress is the configuration state of a builder. next is the only
// transition function; it returns the successor state or a conflict and
// never mutates the receiver.
type progress struct {
	route     route
	enteredBy call

	retry   slot
	retryBy call

	backOff   slot
	backOffBy call
}

func (p progress) next(c call) (progress, error) {
	if c == callRetryOperations {
		if p.route == routeTemplate {
			return p, conflict(c, p.enteredBy, "the default retry template has been modified")
		}
		return p.enter(routeOperations, c), nil
	}

	if p.route == routeOperations {
		return p, conflict(c, p.enteredBy, "custom retry operations have been set")
	}

	switch c {
	case callMaxAttempts:
		if p.retry == slotCustom {
			return p, conflict(c, p.retryBy, "a custom retry policy has been set")
		}
		p.retry, p.retryBy = slotShortcut, c

	case callRetryPolicy:
		if p.route == routeTemplate {
			return p, conflict(c, p.enteredBy, "the retry policy must be the first policy setting")
		}
		p.retry, p.retryBy = slotCustom, c

	case callBackOffOptions, callBackOffPolicy:
		if p.backOff != slotDefault {
			return p, conflict(c, p.backOffBy, "the back off has already been configured")
		}
		p.backOff, p.backOffBy = slotShortcut, c
		if c == callBackOffPolicy {
			p.backOff = slotCustom
		}
	}

	return p.enter(routeTemplate, c), nil
}

func (p progress) enter(r route, c call) progress {
	if p.route != r {
		p.route, p.enteredBy = r, c
	}
	return p
}

// templateAltered reports whether any policy-affecting call changed the
// default template.
func (p progress) templateAltered() bool {
	return p.route == routeTemplate
}
