package headerlottery

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ericselin/header-lottery/cache"
	"github.com/ericselin/header-lottery/csp3"
	"github.com/ericselin/header-lottery/headers"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var ErrNoRequest = errors.New("response has no request URL")

type Config struct {
	// Storage for classification results.
	// Results are not cached if nil.
	Cache cache.Provider
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
}

// Classifier classifies header sets and caches the results by canonical form.
// It is safe for concurrent use.
type Classifier struct {
	cache     cache.Provider
	log       zerolog.Logger
	keyPrefix string
	group     singleflight.Group
}

// CreateClassifier initializes a classifier.
func CreateClassifier(config Config) *Classifier {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	// create a child logger and add defaults
	logger = logger.With().
		Int("classesVersion", csp3.ClassesVersion).
		Logger()

	return &Classifier{
		cache:     config.Cache,
		log:       logger,
		keyPrefix: fmt.Sprintf("v%d:", csp3.ClassesVersion),
	}
}

// Classify classifies the recognized headers of h, see headers.Classify.
// The canonical form of the headers is classified, so that results can be
// shared between semantically identical inputs.
func (c *Classifier) Classify(h headers.Set, origin string) headers.Result {
	canonical := headers.NormalizeSet(h)
	if c.log.GetLevel() <= zerolog.TraceLevel {
		for name := range h {
			if _, ok := headers.KindOf(name); !ok {
				c.log.Trace().Str("header", name).Msg("Ignoring unrecognized header")
			}
		}
	}
	if c.cache == nil {
		return headers.Classify(canonical, origin)
	}

	key := c.key(canonical, origin)
	log := c.log.With().Str("key", key).Logger()
	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		if b, ok, err := c.cache.Get(key); err != nil {
			log.Warn().Err(err).Msg("Could not retrieve from cache")
		} else if ok {
			var r headers.Result
			if err := json.Unmarshal(b, &r); err == nil {
				log.Trace().Msg("Found cached classification")
				return r, nil
			}
			log.Warn().Msg("Could not decode cached classification")
		}
		r := headers.Classify(canonical, origin)
		if b, err := json.Marshal(r); err != nil {
			log.Error().Err(err).Msg("Could not encode classification")
		} else if err := c.cache.Put(key, b); err != nil {
			log.Warn().Err(err).Msg("Could not write to cache")
		} else {
			log.Trace().Int("headers", r.Len()).Msg("Wrote classification to cache")
		}
		return r, nil
	})
	return v.(headers.Result)
}

// ClassifyResponse classifies the headers of an HTTP response. The origin
// is taken from the URL of the request that produced it.
func (c *Classifier) ClassifyResponse(res *http.Response) (headers.Result, error) {
	if res.Request == nil || res.Request.URL == nil {
		return headers.Result{}, ErrNoRequest
	}
	origin, err := headers.Origin(res.Request.URL.String())
	if err != nil {
		return headers.Result{}, err
	}
	return c.Classify(headers.FromHTTP(res.Header), origin), nil
}

// Prune removes cached results of other classification versions.
// It returns the number of removed entries.
func (c *Classifier) Prune() int {
	if c.cache == nil {
		return 0
	}
	purged := 0
	c.cache.AllKeys("", func(key string) {
		if strings.HasPrefix(key, c.keyPrefix) {
			return
		}
		if err := c.cache.Purge(key); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Could not purge stale classification")
			return
		}
		purged++
	})
	c.log.Debug().Int("purged", purged).Msg("Pruned classification cache")
	return purged
}

// key returns the cache key for a canonical header set. The origin only
// affects the classification of a CSP.
func (c *Classifier) key(canonical headers.Set, origin string) string {
	hash := sha256.New()
	for _, kind := range headers.Kinds {
		if value, ok := canonical[kind.Name()]; ok {
			fmt.Fprintf(hash, "%s: %s\n", kind.Name(), value)
		}
	}
	if _, ok := canonical[headers.CSP.Name()]; ok {
		fmt.Fprintf(hash, "\t%s", strings.ToLower(origin))
	}
	return fmt.Sprintf("%s%x", c.keyPrefix, hash.Sum(nil))
}
