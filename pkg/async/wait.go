package async

// WaitAll waits for every future and returns their results in argument order.
// The returned error is the first failure observed in completion order; all
// futures are awaited regardless, so no goroutine is left behind.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	if len(futures) == 0 {
		return results, nil
	}

	b := New[U](WithName("wait_all"))
	for _, f := range futures {
		b.Push(f.Operation())
	}

	var firstErr error
	Drain(b, func(res Result[U]) {
		results[res.ID] = res.Value
		if res.Err != nil && firstErr == nil {
			firstErr = res.Err
		}
	})

	return results, firstErr
}

// WaitAny waits for the first future to complete and returns its index, result and error.
// The remaining futures keep running and complete on their own.
func WaitAny[U any](futures ...*Future[U]) (int, U, error) {
	if len(futures) == 0 {
		var zero U
		return -1, zero, ErrNoFutures
	}

	b := New[U](WithName("wait_any"))
	for _, f := range futures {
		b.Push(f.Operation())
	}

	res, _ := b.Next()
	return int(res.ID), res.Value, res.Err
}
