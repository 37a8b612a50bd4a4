// internal/arima/model.go
package arima

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// ErrFit marks a candidate order that could not be estimated on the given
// series (too few observations for the requested lags, or a singular /
// ill-conditioned regression). Callers running a grid search treat it as
// recoverable.
var ErrFit = errors.New("arima: fit failed")

// Order holds the (p, d, q) hyperparameters of an ARIMA model.
type Order struct {
	P int `json:"p"`
	D int `json:"d"`
	Q int `json:"q"`
}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model is a fitted ARIMA(p,d,q) model together with the tail state of its
// training series, which is everything needed to continue forecasting from
// the training end point. Models are immutable once fitted.
type Model struct {
	Order     Order     `json:"order"`
	Intercept float64   `json:"intercept"`
	AR        []float64 `json:"ar"`
	MA        []float64 `json:"ma"`

	// DiffTail holds the last P values of the d-times differenced training
	// series, oldest first. ResidTail holds the last Q in-sample residuals.
	DiffTail  []float64 `json:"diff_tail"`
	ResidTail []float64 `json:"resid_tail"`

	// IntegrationTail[k] is the final value of the k-times differenced
	// training series, for k = 0..d-1. Used to undo differencing when
	// forecasting.
	IntegrationTail []float64 `json:"integration_tail"`

	Sigma2       float64   `json:"sigma2"`
	TrainN       int       `json:"train_n"`
	TrainEndDate time.Time `json:"train_end_date"`

	// SelectionMAE is the held-out mean absolute error recorded by the
	// trainer when this model won selection. Zero for fixed-order fits.
	SelectionMAE float64 `json:"selection_mae,omitempty"`
}

// Fit estimates an ARIMA model of the given order on values using conditional
// least squares. Mixed models (q > 0) are estimated with the two-stage
// Hannan-Rissanen procedure: a long autoregression first approximates the
// innovations, then AR and MA terms are regressed jointly.
func Fit(values []float64, order Order) (*Model, error) {
	if order.P < 0 || order.D < 0 || order.Q < 0 {
		return nil, fmt.Errorf("%w: negative order %s", ErrFit, order)
	}
	if len(values) <= order.D {
		return nil, fmt.Errorf("%w: %d observations cannot be differenced %d times", ErrFit, len(values), order.D)
	}

	w := difference(values, order.D)
	m := len(w)
	if m < 1 {
		return nil, fmt.Errorf("%w: empty series after differencing", ErrFit)
	}

	var (
		intercept float64
		ar        []float64
		ma        []float64
		err       error
	)

	switch {
	case order.P == 0 && order.Q == 0:
		intercept = mean(w)
		ar, ma = []float64{}, []float64{}
	case order.Q == 0:
		intercept, ar, err = fitAR(w, order.P)
		ma = []float64{}
	default:
		intercept, ar, ma, err = fitHannanRissanen(w, order.P, order.Q)
	}
	if err != nil {
		return nil, err
	}

	for _, c := range append(append([]float64{intercept}, ar...), ma...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: non-finite coefficient for order %s", ErrFit, order)
		}
	}

	residuals := computeResiduals(w, intercept, ar, ma)

	model := &Model{
		Order:           order,
		Intercept:       intercept,
		AR:              ar,
		MA:              ma,
		DiffTail:        tail(w, order.P),
		ResidTail:       tail(residuals, order.Q),
		IntegrationTail: integrationTail(values, order.D),
		Sigma2:          meanSquare(residuals[minInt(order.P, len(residuals)):]),
		TrainN:          len(values),
	}

	return model, nil
}

// fitAR estimates a pure AR(p) model by ordinary least squares with an
// intercept term.
func fitAR(w []float64, p int) (float64, []float64, error) {
	rows := len(w) - p
	if rows < p+2 {
		return 0, nil, fmt.Errorf("%w: %d observations too few for AR(%d)", ErrFit, len(w), p)
	}

	x := mat.NewDense(rows, p+1, nil)
	y := mat.NewVecDense(rows, nil)
	for t := p; t < len(w); t++ {
		row := t - p
		x.Set(row, 0, 1)
		for i := 1; i <= p; i++ {
			x.Set(row, i, w[t-i])
		}
		y.SetVec(row, w[t])
	}

	beta, err := solveLeastSquares(x, y)
	if err != nil {
		return 0, nil, err
	}

	return beta[0], beta[1 : p+1], nil
}

// fitHannanRissanen estimates a mixed ARMA(p,q) model. Stage one fits a long
// autoregression to approximate the innovation sequence; stage two regresses
// the series on its own lags and the lagged innovation estimates.
func fitHannanRissanen(w []float64, p, q int) (float64, []float64, []float64, error) {
	long := p + q + 1
	if len(w)-long < long+2 {
		return 0, nil, nil, fmt.Errorf("%w: %d observations too few for ARMA(%d,%d)", ErrFit, len(w), p, q)
	}

	longIntercept, longAR, err := fitAR(w, long)
	if err != nil {
		return 0, nil, nil, err
	}

	// Innovation estimates from the long AR fit; undefined entries stay zero.
	ehat := make([]float64, len(w))
	for t := long; t < len(w); t++ {
		pred := longIntercept
		for i := 1; i <= long; i++ {
			pred += longAR[i-1] * w[t-i]
		}
		ehat[t] = w[t] - pred
	}

	start := long + q
	if p > start {
		start = p
	}
	rows := len(w) - start
	cols := 1 + p + q
	if rows < cols+1 {
		return 0, nil, nil, fmt.Errorf("%w: %d observations too few for ARMA(%d,%d) regression", ErrFit, len(w), p, q)
	}

	x := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)
	for t := start; t < len(w); t++ {
		row := t - start
		x.Set(row, 0, 1)
		for i := 1; i <= p; i++ {
			x.Set(row, i, w[t-i])
		}
		for j := 1; j <= q; j++ {
			x.Set(row, p+j, ehat[t-j])
		}
		y.SetVec(row, w[t])
	}

	beta, err := solveLeastSquares(x, y)
	if err != nil {
		return 0, nil, nil, err
	}

	return beta[0], beta[1 : p+1], beta[p+1 : p+1+q], nil
}

// solveLeastSquares solves the overdetermined system X beta = y. A singular or
// badly conditioned design matrix is reported as a fit failure.
func solveLeastSquares(x *mat.Dense, y *mat.VecDense) ([]float64, error) {
	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFit, err)
	}

	out := make([]float64, beta.Len())
	for i := range out {
		out[i] = beta.AtVec(i)
	}
	return out, nil
}

// computeResiduals runs the one-step-ahead recursion over the differenced
// training series. Residuals before the first fully lagged observation are
// left at zero.
func computeResiduals(w []float64, intercept float64, ar, ma []float64) []float64 {
	p, q := len(ar), len(ma)
	residuals := make([]float64, len(w))
	for t := p; t < len(w); t++ {
		pred := intercept
		for i := 1; i <= p; i++ {
			pred += ar[i-1] * w[t-i]
		}
		for j := 1; j <= q; j++ {
			if t-j >= 0 {
				pred += ma[j-1] * residuals[t-j]
			}
		}
		residuals[t] = w[t] - pred
	}
	return residuals
}

// difference applies d rounds of first differencing.
func difference(values []float64, d int) []float64 {
	w := make([]float64, len(values))
	copy(w, values)
	for k := 0; k < d; k++ {
		next := make([]float64, len(w)-1)
		for i := 1; i < len(w); i++ {
			next[i-1] = w[i] - w[i-1]
		}
		w = next
	}
	return w
}

// integrationTail captures the last value at each differencing level below d,
// which is the state needed to integrate forecasts back to the original scale.
func integrationTail(values []float64, d int) []float64 {
	tailState := make([]float64, d)
	w := make([]float64, len(values))
	copy(w, values)
	for k := 0; k < d; k++ {
		tailState[k] = w[len(w)-1]
		next := make([]float64, len(w)-1)
		for i := 1; i < len(w); i++ {
			next[i-1] = w[i] - w[i-1]
		}
		w = next
	}
	return tailState
}

func tail(values []float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n > len(values) {
		n = len(values)
	}
	out := make([]float64, n)
	copy(out, values[len(values)-n:])
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanSquare(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v * v
	}
	return sum / float64(len(values))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
