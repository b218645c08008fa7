// Package retry provides composable retry and backoff strategies and the
// default executor that applies them.
//
// The package separates three concerns:
//
//   - RetryPolicy: whether another attempt should happen, given the State
//     (attempt count, last error, elapsed time) of the current execution
//   - BackOffPolicy: how long to wait before that attempt
//   - Operations: the executor that runs work under a pair of policies
//
// # Quick Start
//
//	tmpl := retry.NewTemplate(
//	    retry.WithMaxAttempts(5),
//	    retry.WithBackOffPolicy(retry.NewExponentialBackOffPolicy(100*time.Millisecond, 2, 5*time.Second)),
//	)
//
//	v, err := tmpl.Execute(ctx, "fetch-user", func(ctx context.Context, s *retry.State) (any, error) {
//	    return client.GetUser(ctx, id)
//	}, nil)
//
// For one-off calls, Do builds a Template from options:
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    return client.Call(ctx)
//	}, retry.WithMaxAttempts(3))
//
// # Retry Policies
//
//	retry.NewSimpleRetryPolicy(3)              // at most 3 attempts
//	retry.NeverRetryPolicy{}                   // first attempt only
//	retry.AlwaysRetryPolicy{}                  // until success or Stop
//	retry.TimeoutRetryPolicy{Timeout: 10 * time.Second}
//	retry.CompositeRetryPolicy{Policies: ...}  // all must agree
//
// # Backoff Policies
//
// Backoff sequences come from github.com/cenkalti/backoff/v5. Each execution
// starts its own sequence, so one policy can serve concurrent executions.
//
//	retry.NewExponentialBackOffPolicy(100*time.Millisecond, 2.0, time.Second)
//	retry.FixedBackOffPolicy{Interval: time.Second}
//	retry.NoBackOffPolicy{}
//
// Attempt-indexed strategies compose through DelayFunc:
//
//	retry.WithJitter(0.2, retry.WithCap(10*time.Second, retry.Exponential(100*time.Millisecond)))
//
// # Terminal Errors
//
// Use Stop to signal that an error should not be retried. The executor gives
// up at once and the recovery callback, if any, still runs:
//
//	if errors.Is(err, sql.ErrNoRows) {
//	    return nil, retry.Stop(ErrNotFound)
//	}
//
// # Stateful Retry
//
// ExecuteStateful makes one attempt per call and keeps the retry history under
// a caller-supplied key. It is meant for work that must be rolled back and
// re-invoked from outside, such as a message redelivered after a failed
// transaction. At most WithSessionCapacity keys are tracked; the least
// recently attempted key is dropped when the cache is full.
//
// # Testing
//
// Inject a fake Clock with WithClock to control time without real sleeps.
package retry
