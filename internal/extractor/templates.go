package extractor

import "registrum/internal/domain"

// Field is one attribute the collaborator is asked to extract.
type Field struct {
	Key         string
	Description string
}

// FieldGroup is a named block of related fields in the extraction prompt.
type FieldGroup struct {
	Name   string
	Fields []Field
}

// Template describes how a document type is extracted.
type Template struct {
	Type    domain.DocumentType
	Subject string
	Groups  []FieldGroup
}

// Keys returns every field key of the template in prompt order.
func (t Template) Keys() []string {
	var keys []string
	for _, g := range t.Groups {
		for _, f := range g.Fields {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

const (
	GroupIdentity       = "IDENTIFICAÇÃO"
	GroupProperty       = "DADOS DO IMÓVEL"
	GroupParty          = "PARTES"
	GroupFinancial      = "VALORES"
	GroupEncumbrance    = "ÔNUS"
	GroupCertificate    = "CERTIDÃO"
	GroupRepresentation = "REPRESENTAÇÃO"
)

var (
	propertyFields = FieldGroup{GroupProperty, []Field{
		{"tipo_imovel", "Tipo de imóvel (terreno, unidade autônoma, lote etc.)"},
		{"tipo_logradouro", "Tipo de logradouro (rua, avenida, estrada etc.)"},
		{"nome_logradouro", "Nome do logradouro"},
		{"numero_lote", "Número do lote ou unidade autônoma"},
		{"bloco", "Bloco (para unidades autônomas)"},
		{"quadra", "Quadra"},
		{"loteamento", "Loteamento"},
		{"bairro", "Bairro"},
		{"cidade", "Cidade"},
		{"cep", "CEP"},
		{"area_total", "Área total"},
		{"area_construida", "Área construída"},
		{"area_privativa", "Área privativa (para unidades autônomas)"},
		{"fracao_ideal", "Fração ideal (para unidades autônomas)"},
	}}

	partyFields = FieldGroup{GroupParty, []Field{
		{"transmitentes", "Nome completo, CPF/CNPJ e qualificação de quem transmite o imóvel"},
		{"adquirentes", "Nome completo, CPF/CNPJ e qualificação de quem adquire o imóvel"},
		{"estado_civil", "Estado civil das partes"},
		{"regime_casamento", "Regime de bens do casamento"},
		{"conjuges", "Nome e CPF dos cônjuges, se houver"},
	}}
)

// DefaultTemplates is the registry of extraction templates keyed by document type.
// UNKNOWN has no template and is never extracted.
var DefaultTemplates = map[domain.DocumentType]Template{
	domain.DocTypeMatricula: {
		Type:    domain.DocTypeMatricula,
		Subject: "matrícula de imóvel",
		Groups: []FieldGroup{
			{GroupIdentity, []Field{
				{"numero_matricula", "Número da matrícula"},
				{"cnm", "Cadastro Nacional de Matrícula"},
				{"inscricao_imobiliaria", "Inscrição imobiliária"},
				{"rip", "RIP, se houver"},
				{"dominialidade", "Dominialidade"},
			}},
			propertyFields,
			{GroupParty, []Field{
				{"proprietarios", "Nome(s) do(s) proprietário(s) atual(is), considerando todas as transmissões registradas"},
				{"senhorio_enfiteuta", "Senhorio direto e enfiteuta, se aplicável"},
			}},
			{GroupEncumbrance, []Field{
				{"tipo_onus_ativo", "Tipo de ônus ativo (hipoteca, penhora, usufruto etc.)"},
				{"descricao_onus", "Descrição completa do ônus ativo"},
			}},
		},
	},
	domain.DocTypeContrato: {
		Type:    domain.DocTypeContrato,
		Subject: "contrato ou escritura de compra e venda",
		Groups: []FieldGroup{
			{GroupIdentity, []Field{
				{"numero_matricula", "Número da matrícula do imóvel citada no título"},
				{"inscricao_imobiliaria", "Inscrição imobiliária"},
				{"data_contrato", "Data de lavratura ou assinatura"},
				{"forma_alienacao", "Forma de alienação (compra e venda, doação, permuta etc.)"},
			}},
			propertyFields,
			partyFields,
			{GroupFinancial, []Field{
				{"valor_transacao", "Valor da transação"},
				{"valor_financiado", "Valor financiado, se houver"},
				{"valor_divida", "Valor da dívida garantida, se houver"},
				{"forma_pagamento", "Forma de pagamento"},
			}},
			{GroupEncumbrance, []Field{
				{"tipo_onus", "Ônus constituído no título (alienação fiduciária, hipoteca etc.)"},
			}},
		},
	},
	domain.DocTypeITBI: {
		Type:    domain.DocTypeITBI,
		Subject: "guia ou certidão de ITBI",
		Groups: []FieldGroup{
			{GroupIdentity, []Field{
				{"numero_guia", "Número da guia ou certidão"},
				{"inscricao_imobiliaria", "Inscrição imobiliária"},
				{"municipio", "Município emissor"},
			}},
			{GroupParty, []Field{
				{"transmitentes", "Transmitente(s)"},
				{"adquirentes", "Adquirente(s)"},
			}},
			{GroupFinancial, []Field{
				{"valor_transacao", "Valor declarado da transação"},
				{"valor_avaliacao", "Valor venal ou de avaliação"},
				{"base_calculo", "Base de cálculo"},
				{"valor_imposto", "Valor do imposto"},
				{"data_pagamento", "Data do pagamento"},
			}},
		},
	},
	domain.DocTypeCertidao: {
		Type:    domain.DocTypeCertidao,
		Subject: "certidão de matrícula (inteiro teor ou ônus reais)",
		Groups: []FieldGroup{
			{GroupIdentity, []Field{
				{"cnm", "Cadastro Nacional de Matrícula (número da matrícula)"},
				{"inscricao_imobiliaria", "Inscrição imobiliária"},
				{"rip", "RIP, se houver"},
			}},
			{GroupProperty, []Field{
				{"descricao_imovel", "Descrição completa do imóvel (endereço, área, confrontações, benfeitorias)"},
			}},
			{GroupParty, []Field{
				{"proprietarios", "Proprietário(s) atual(is) com CPF, estado civil e regime de bens; ignore proprietários substituídos"},
				{"senhorio_enfiteuta", "Senhorio direto e enfiteuta, se aplicável"},
			}},
			{GroupEncumbrance, []Field{
				{"onus_certidao_negativa", "Ônus reais, restrições judiciais e administrativas, ou a declaração negativa"},
			}},
			{GroupCertificate, []Field{
				{"nome_solicitante", "Nome do solicitante da certidão"},
				{"data_emissao", "Data de emissão"},
			}},
		},
	},
	domain.DocTypeProcuracao: {
		Type:    domain.DocTypeProcuracao,
		Subject: "procuração",
		Groups: []FieldGroup{
			{GroupRepresentation, []Field{
				{"outorgantes", "Outorgante(s) com qualificação"},
				{"outorgados", "Outorgado(s) com qualificação"},
				{"poderes", "Poderes conferidos"},
				{"data_lavratura", "Data de lavratura"},
				{"cartorio", "Tabelionato e livro/folha"},
				{"validade", "Prazo de validade, se houver"},
			}},
		},
	},
	domain.DocTypeCND: {
		Type:    domain.DocTypeCND,
		Subject: "certidão negativa de débitos",
		Groups: []FieldGroup{
			{GroupCertificate, []Field{
				{"orgao_emissor", "Órgão emissor"},
				{"contribuinte", "Nome e CPF/CNPJ do contribuinte"},
				{"resultado", "Resultado (negativa, positiva com efeito de negativa, positiva)"},
				{"data_emissao", "Data de emissão"},
				{"data_validade", "Data de validade"},
				{"codigo_autenticidade", "Código de controle ou autenticidade"},
			}},
		},
	},
	domain.DocTypeCertidaoSimplificada: {
		Type:    domain.DocTypeCertidaoSimplificada,
		Subject: "certidão simplificada da junta comercial",
		Groups: []FieldGroup{
			{GroupIdentity, []Field{
				{"razao_social", "Razão social"},
				{"cnpj", "CNPJ"},
				{"natureza_juridica", "Natureza jurídica"},
				{"situacao", "Situação da empresa"},
			}},
			{GroupRepresentation, []Field{
				{"administradores", "Administradores e forma de representação"},
			}},
			{GroupCertificate, []Field{
				{"data_emissao", "Data de emissão"},
			}},
		},
	},
	domain.DocTypeDeclaracaoPrimeiraAquisicao: {
		Type:    domain.DocTypeDeclaracaoPrimeiraAquisicao,
		Subject: "declaração de primeira aquisição",
		Groups: []FieldGroup{
			{GroupParty, []Field{
				{"declarante", "Nome e CPF do declarante"},
			}},
			{GroupFinancial, []Field{
				{"financiamento_sfh", "Se a aquisição é financiada pelo SFH"},
			}},
			{GroupCertificate, []Field{
				{"data_declaracao", "Data da declaração"},
			}},
		},
	},
	domain.DocTypeAforamento: {
		Type:    domain.DocTypeAforamento,
		Subject: "certidão de aforamento ou CAT da SPU",
		Groups: []FieldGroup{
			{GroupIdentity, []Field{
				{"rip", "RIP"},
				{"regime_utilizacao", "Regime de utilização (aforamento, ocupação)"},
			}},
			{GroupParty, []Field{
				{"senhorio_enfiteuta", "Senhorio direto e enfiteuta"},
			}},
			{GroupFinancial, []Field{
				{"laudemio", "Situação do laudêmio"},
			}},
			{GroupCertificate, []Field{
				{"numero_certidao", "Número da certidão"},
				{"data_validade", "Data de validade"},
			}},
		},
	},
	domain.DocTypeBoletimCadastro: {
		Type:    domain.DocTypeBoletimCadastro,
		Subject: "boletim de cadastro imobiliário",
		Groups: []FieldGroup{
			{GroupIdentity, []Field{
				{"inscricao_imobiliaria", "Inscrição imobiliária"},
				{"contribuinte", "Contribuinte cadastrado"},
			}},
			{GroupProperty, []Field{
				{"endereco", "Endereço do imóvel"},
				{"area_terreno", "Área do terreno"},
				{"area_construida", "Área construída"},
			}},
			{GroupFinancial, []Field{
				{"valor_venal", "Valor venal"},
			}},
		},
	},
	domain.DocTypeMinuta: {
		Type:    domain.DocTypeMinuta,
		Subject: "minuta de registro",
		Groups: []FieldGroup{
			{GroupIdentity, []Field{
				{"numero_matricula", "Número da matrícula"},
			}},
			{GroupProperty, []Field{
				{"descricao_imovel_completa", "Texto completo da descrição do imóvel"},
			}},
			{GroupParty, []Field{
				{"proprietario_atual", "Nome completo do proprietário atual"},
			}},
			{GroupEncumbrance, []Field{
				{"tipo_onus_ativo", "Tipo de ônus ativo (hipoteca, penhora, usufruto etc.)"},
				{"descricao_onus_completa", "Descrição completa do ônus ativo"},
			}},
			{"OBSERVAÇÕES", []Field{
				{"possiveis_erros", "Possíveis erros ou inconsistências encontrados"},
			}},
		},
	},
}
