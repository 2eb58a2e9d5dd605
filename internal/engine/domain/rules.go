package domain

// BetModeRule define contagem de pernas e perfil de pagamento por
// modalidade. Valores vindos da configuração padrão da plataforma.
type BetModeRule struct {
	Mode               BetType            `json:"mode"`
	MinLegs            int                `json:"minLegs"`
	MaxLegs            int                `json:"maxLegs"`
	TeaserPointOptions []float64          `json:"teaserPointOptions,omitempty"`
	Multipliers        map[int]float64    `json:"multipliers,omitempty"` // legs -> multiplicador (teaser)
}

// DefaultBetModeRules é a tabela padrão das modalidades ativas.
var DefaultBetModeRules = []BetModeRule{
	{Mode: BetStraight, MinLegs: 1, MaxLegs: 1},
	{Mode: BetParlay, MinLegs: 2, MaxLegs: 12},
	{
		Mode:               BetTeaser,
		MinLegs:            2,
		MaxLegs:            6,
		TeaserPointOptions: []float64{6, 6.5, 7},
		Multipliers:        map[int]float64{2: 1.8, 3: 2.6, 4: 4.0, 5: 6.5, 6: 9.5},
	},
	{Mode: BetIf, MinLegs: 2, MaxLegs: 2},
	{Mode: BetReverse, MinLegs: 2, MaxLegs: 2},
}

// RuleFor retorna a regra da modalidade, ou nil se desconhecida.
func RuleFor(mode BetType) *BetModeRule {
	for i := range DefaultBetModeRules {
		if DefaultBetModeRules[i].Mode == mode {
			return &DefaultBetModeRules[i]
		}
	}
	return nil
}

// TeaserMultiplier retorna o multiplicador de pagamento de teaser para
// um número de pernas vencedoras. Uma perna só devolve a aposta (1.0).
func TeaserMultiplier(legs int) float64 {
	rule := RuleFor(BetTeaser)
	if rule != nil {
		if m, ok := rule.Multipliers[legs]; ok {
			return m
		}
	}
	return 1.0
}
