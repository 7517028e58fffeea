package types

// SystemStatus is the user-facing label derived from the global score.
type SystemStatus string

const (
	StatusBom     SystemStatus = "Bom"
	StatusRegular SystemStatus = "Regular"
	StatusAtencao SystemStatus = "Atenção"
	StatusCritico SystemStatus = "Crítico"
)

// StatusForScore maps a 0..100 score onto its status band.
func StatusForScore(score int) SystemStatus {
	switch {
	case score >= 80:
		return StatusBom
	case score >= 60:
		return StatusRegular
	case score >= 40:
		return StatusAtencao
	default:
		return StatusCritico
	}
}
