package scoring

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/posting"
	"github.com/jobdigest/job-agent/internal/profile"
)

// ScoreFunc is the signature of Score; batches accept it so callers can decorate scoring.
type ScoreFunc func(posting.Posting, *profile.Profile) Result

// ScoreAll scores every posting in order. A posting whose scoring panics is logged and
// skipped; the rest of the batch is still scored.
func ScoreAll(postings []posting.Posting, prof *profile.Profile, logger *zap.Logger) []Scored {
	return scoreAll(Score, postings, prof, logger)
}

func scoreAll(score ScoreFunc, postings []posting.Posting, prof *profile.Profile, logger *zap.Logger) []Scored {
	if logger == nil {
		logger = zap.NewNop()
	}

	scored := make([]Scored, 0, len(postings))
	for i, p := range postings {
		result, err := scoreSafely(score, p, prof)
		if err != nil {
			logger.Warn("scoring posting failed. It will be skipped.",
				zap.Int("index", i),
				zap.String("title", p.Title),
				zap.String("url", p.URL),
				zap.Error(err),
			)
			continue
		}

		scored = append(scored, Scored{Posting: p, Result: result})
	}

	return scored
}

func scoreSafely(score ScoreFunc, p posting.Posting, prof *profile.Profile) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	return score(p, prof), nil
}
