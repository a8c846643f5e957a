// Package errs provides the error types shared by the dispatch engine.
//
// Two families live here:
//   - validation and lookup errors (ValueIsRequiredError, ValueIsInvalidError,
//     ValueIsOutOfRangeError, ObjectNotFoundError) used by constructors and adapters;
//   - the dispatch taxonomy (InvalidTransitionError, NotAuthorizedError, AlreadyClaimedError,
//     NotOwnerError, InvalidStateError, PartnerOfflineError) returned by the state machine,
//     the claim arbiter and the location ingestor.
//
// Each type follows the same pattern:
//   - a sentinel error variable (e.g. ErrAlreadyClaimed) for errors.Is checks;
//   - a struct carrying the details for errors.As;
//   - constructor functions, with a WithCause variant where a cause is meaningful;
//   - Unwrap returning the sentinel.
//
// None of these errors are retried inside the engine. Retrying is a caller policy.
package errs
