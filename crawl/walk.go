package crawl

import (
	"context"
	"sync"
	"time"
)

// drainTimeout bounds how long the coordinator waits for in-flight pages
// after it stops dispatching.
const drainTimeout = 5 * time.Second

// walkProcessor processes one link and returns its result.
type walkProcessor func(ctx context.Context, link Link) pageResult

// walkFrontier feeds frontier links to a pool of workers and hands every
// result to handle on the coordinator goroutine. At most maxPages links are
// dispatched in total. Links discovered by a result are queued only while
// the dispatch budget is not spent.
func (c *Crawler) walkFrontier(
	ctx context.Context,
	frontier *Frontier,
	maxPages int,
	process walkProcessor,
	handle func(res *pageResult),
) error {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	type job struct {
		link Link
		seq  int
	}
	workCh := make(chan job, concurrency)
	resultCh := make(chan pageResult)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range workCh {
				res := process(ctx, j.link)
				res.seq = j.seq
				select {
				case resultCh <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	dispatched := 0
	pending := 0
	var next *Link

	accept := func(res *pageResult) {
		if dispatched < maxPages {
			for _, u := range res.links {
				frontier.Push(Link{URL: u, Depth: res.link.Depth + 1})
			}
		}
		handle(res)
	}

	if link, ok := frontier.Pop(); ok {
		next = &link
	}

coordinatorLoop:
	for {
		if next == nil && pending == 0 {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if next != nil && dispatched < maxPages {
			select {
			case <-ctx.Done():
				break coordinatorLoop
			case workCh <- job{link: *next, seq: dispatched}:
				dispatched++
				pending++
				next = nil
			case res := <-resultCh:
				pending--
				accept(&res)
			}
		} else {
			if pending == 0 {
				break
			}
			select {
			case <-ctx.Done():
				break coordinatorLoop
			case res, ok := <-resultCh:
				if !ok {
					break coordinatorLoop
				}
				pending--
				accept(&res)
			}
		}

		if next == nil && dispatched < maxPages {
			if link, ok := frontier.Pop(); ok {
				next = &link
			}
		}
	}

	close(workCh)

	timeout := time.After(drainTimeout)
drainLoop:
	for {
		select {
		case res, ok := <-resultCh:
			if !ok {
				break drainLoop
			}
			handle(&res)
		case <-timeout:
			break drainLoop
		}
	}

	return ctx.Err()
}
