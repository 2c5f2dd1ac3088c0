package pulse

// window is a fixed-size sliding window over recent prices for the simple
// moving average reported with each tick.
type window struct {
	prices []float64
	size   int
}

func newWindow(size int) *window {
	return &window{size: size}
}

func (w *window) push(price float64) {
	w.prices = append(w.prices, price)
	if len(w.prices) > w.size {
		w.prices = w.prices[1:]
	}
}

// average returns the mean of the samples held so far, or zero when empty.
func (w *window) average() float64 {
	if len(w.prices) == 0 {
		return 0
	}
	var sum float64
	for _, p := range w.prices {
		sum += p
	}
	return sum / float64(len(w.prices))
}
