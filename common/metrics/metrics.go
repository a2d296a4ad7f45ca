package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	Namespace = "attest_namespace"

	SubsystemCommon   = "base"
	SubsystemContract = "contract"
	SubsystemProof    = "proof"
	SubsystemLedger   = "ledger"

	LabelCallMethod = "method"

	LabelContractName   = "contract_name"
	LabelContractMethod = "contract_method"
	LabelErrorCode      = "code"

	LabelModule   = "module"
	LabelRelation = "relation"
	LabelResult   = "result"
)

var DefBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// base
var (
	// 并发请求量
	ConcurrentRequestGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: SubsystemCommon,
			Name:      "concurrent_requests_total",
			Help:      "Total number of concurrent requests.",
		},
		[]string{LabelModule})
)

// contract
var (
	ContractInvokeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemContract,
			Name:      "invoke_total",
			Help:      "Total number of invoke contract latency.",
		},
		[]string{LabelContractName, LabelContractMethod, LabelErrorCode})
	ContractInvokeHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemContract,
			Name:      "invoke_seconds",
			Help:      "Histogram of invoke contract latency.",
			Buckets:   DefBuckets,
		},
		[]string{LabelContractName, LabelContractMethod})
)

// proof
var (
	ProofGenerateHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemProof,
			Name:      "generate_seconds",
			Help:      "Histogram of proof generation latency.",
			Buckets:   DefBuckets,
		},
		[]string{LabelRelation})
	ProofVerifyCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemProof,
			Name:      "verify_total",
			Help:      "Total number of proof verifications by result.",
		},
		[]string{LabelResult})
)

// ledger
var (
	LedgerMintCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemLedger,
			Name:      "mint_total",
			Help:      "Total number of attestation mint attempts by result.",
		},
		[]string{LabelResult})
	LedgerSupplyGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: SubsystemLedger,
			Name:      "supply_total",
			Help:      "Total number of attestations issued.",
		})
)

func RegisterMetrics() {
	// base
	prometheus.MustRegister(ConcurrentRequestGauge)
	// contract
	prometheus.MustRegister(ContractInvokeCounter)
	prometheus.MustRegister(ContractInvokeHistogram)
	// proof
	prometheus.MustRegister(ProofGenerateHistogram)
	prometheus.MustRegister(ProofVerifyCounter)
	// ledger
	prometheus.MustRegister(LedgerMintCounter)
	prometheus.MustRegister(LedgerSupplyGauge)
}
