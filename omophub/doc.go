// Package omophub provides a client for the OMOPHub vocabulary API, which
// serves the OMOP standardized medical vocabularies (SNOMED, ICD10CM, RxNorm,
// LOINC and others).
//
// # Architecture
//
// Every call flows through the same pipeline:
//
//   - Transport: one HTTP exchange with a per-request timeout and retry of
//     connection failures using capped exponential backoff
//   - Envelope decoding: the {"success", "data", "meta", "error"} wrapper is
//     parsed, data is unwrapped and pagination metadata extracted
//   - Error classification: non-2xx responses become *Error values whose
//     Kind selects a category with errors.Is
//   - Requester: builds URLs, adds authentication and exposes Get, Post and
//     GetRaw
//   - Pagination: lazy iteration over every page of a listing
//
// Each stage has a blocking form and a concurrent form. The concurrent form
// returns a Future that is awaited with a context; both forms share one
// Transport and produce identical results and errors.
//
// # Usage
//
//	client, err := omophub.NewClient("", omophub.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	concept, err := client.Concepts.Get(ctx, 201826, nil)
//	if errors.Is(err, omophub.ErrNotFound) {
//		// ...
//	}
//
//	for c, err := range client.Search.BasicIter(ctx, "diabetes", nil) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(c.ConceptID, c.ConceptName)
//	}
//
// Concurrent use:
//
//	async := client.Async()
//	concepts, err := async.Concepts.GetMany(ctx, []int64{201826, 4329847}, nil)
//
// # Error Handling
//
// Every failure is an *Error. Its Kind is one of ErrDecode, ErrConnection,
// ErrTimeout, ErrValidation, ErrAuthentication, ErrNotFound, ErrRateLimit,
// ErrServer or ErrAPI, and errors.Is(err, ErrOMOPHub) matches all of them.
// Only connection failures are retried; HTTP error statuses never are.
package omophub
