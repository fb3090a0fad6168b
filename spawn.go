package termtext

// SpawnResult is what Spawn hands back: a ready terminal or the error
// that prevented it.
type SpawnResult struct {
	Terminal *Terminal
	Err      error
}

// Spawn runs build on a new goroutine and delivers its result on the
// returned channel. The channel receives exactly one value and is then
// closed.
func Spawn(build func() (*Terminal, error)) <-chan SpawnResult {
	ch := make(chan SpawnResult, 1)
	go func() {
		defer close(ch)
		t, err := build()
		ch <- SpawnResult{Terminal: t, Err: err}
	}()
	return ch
}

// SpawnTerminal is Spawn with NewTerminal(cfg).
func SpawnTerminal(cfg Config) <-chan SpawnResult {
	return Spawn(func() (*Terminal, error) { return NewTerminal(cfg) })
}
