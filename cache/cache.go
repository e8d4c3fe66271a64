package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// ResultCache keeps rendered API responses for spans with both ends fixed,
// such responses never change
var ResultCache = cache.New(10*time.Minute, time.Minute)

// Result is a rendered response
type Result struct {
	ContentType string
	Body        []byte
}
