// Package interceptor builds retry interceptors around method invocations.
//
// A Builder collects the retry configuration for an interceptor and validates
// every call as it is made:
//
//	b := interceptor.Stateless()
//	if err := b.SetMaxAttempts(5); err != nil {
//		return err
//	}
//	if err := b.SetBackOffOptions(100*time.Millisecond, 2.0, 10*time.Second); err != nil {
//		return err
//	}
//	ic := b.Build()
//
// or, with options applied in order:
//
//	ic, err := interceptor.NewStateless(
//		interceptor.MaxAttempts(5),
//		interceptor.BackOffOptions(100*time.Millisecond, 2.0, 10*time.Second),
//		interceptor.WithRecoverer(fallback),
//	)
//
// Custom retry operations replace the builder's default retry.Template and
// exclude every other policy-affecting setting. A custom retry policy must
// be set before any shortcut. A conflicting call fails with a *ConflictError
// naming both calls and leaves the builder as it was.
//
// Stateless interceptors retry inside a single Invoke. Stateful interceptors
// make one attempt per Invoke and remember failures between invocations with
// the same key, for callers that roll back and redeliver. Other flavors reuse
// the same validation through Custom.
package interceptor
