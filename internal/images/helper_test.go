package images

import (
	"io"

	"github.com/Lukazavrr/hotwheels-bot/internal/observe"
)

func testObserver() *observe.Observer {
	return observe.New(io.Discard, false)
}
