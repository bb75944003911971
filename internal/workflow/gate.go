package workflow

// EstadoGate descreve qual superfície a sessão atual pode controlar.
// Os estados "carregando" e "não autenticado" existem só no cliente (antes
// da primeira resposta e quando o middleware rejeita o token); aqui a
// derivação é sempre sobre um cadastro conhecido.
type EstadoGate string

const (
	GatePendenteAprovacao EstadoGate = "pendente_aprovacao"
	GateAdminAtivo        EstadoGate = "admin_ativo"
	GateUsuarioAtivo      EstadoGate = "usuario_ativo"
)

// EstadoPara deriva o estado do gate a partir de papel e aprovação.
// Autenticar com conta não aprovada é válido no provedor de identidade,
// mas o gate devolve pendente_aprovacao e nenhum painel é liberado.
func EstadoPara(papel string, aprovado bool) EstadoGate {
	if !aprovado {
		return GatePendenteAprovacao
	}
	if papel == PapelAdmin {
		return GateAdminAtivo
	}
	return GateUsuarioAtivo
}
