// Package fetch provides the suspending fetch operations pushed into an
// async.Batch: HTTP downloads, S3 objects and Redis values.
//
// Every fetcher returns async.Operation[Body]. Failures are *Error values
// classified by Kind (connection, status, decode, not found, invalid target)
// and match the package sentinels with errors.Is:
//
//	res, _ := batch.Next()
//	if errors.Is(res.Err, fetch.ErrStatus) {
//	    var fe *fetch.Error
//	    errors.As(res.Err, &fe)
//	    log.Printf("%s answered %d", fe.Target, fe.Status)
//	}
//
// A Resolver maps target strings to operations by scheme:
//
//	resolver := fetch.NewResolver(
//	    fetch.WithHTTP(fetch.NewHTTP(httpCfg)),
//	    fetch.WithS3(fetch.NewS3(s3Client, 0)),
//	    fetch.WithRedis(fetch.NewRedis(redisClient)),
//	)
//	b := async.New[fetch.Body]()
//	for _, target := range []string{"https://example.com", "s3://bucket/key", "redis:greeting"} {
//	    b.Push(resolver.Resolve(target))
//	}
//
// Unknown schemes resolve to an operation that fails with KindInvalidTarget
// instead of returning an error up front, so one bad target never stops the
// rest of a batch.
//
// Retry and timeout policy belong to the underlying clients; the package does
// not retry on its own, except for the initial ConnectRedis handshake.
package fetch
