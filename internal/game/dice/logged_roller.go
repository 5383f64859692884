package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged randomness.
// Dice expressions are logged with expression, dice values, modifier, and total;
// continuous draws used by the damage formulas are logged with their label.
//
// Roller itself satisfies Source, so it can be handed to any consumer that
// only needs raw draws while still leaving an audit trail.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src must be non-nil. A nil logger is replaced with a no-op logger.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result at debug level.
//
// Precondition: expr must come from Parse.
// Postcondition: result logged; returns RollResult or error.
func (r *Roller) Roll(expr Expression) (RollResult, error) {
	result, err := Roll(expr, r.src)
	if err != nil {
		return RollResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}

// RollExpr parses expr and rolls it, logging the result.
//
// Precondition: expr must be a valid dice expression string.
// Postcondition: Returns a RollResult or a parse/roll error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e)
}

// Intn draws from the wrapped source and logs the draw at debug level.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("random int", zap.Int("n", n), zap.Int("value", v))
	return v
}

// Float64 draws from the wrapped source and logs the draw at debug level.
func (r *Roller) Float64() float64 {
	v := r.src.Float64()
	r.logger.Debug("random float", zap.Float64("value", v))
	return v
}
