package classifier

import (
	"fmt"
	"strings"

	"registrum/internal/domain"
)

var systemPrompt = func() string {
	types := make([]string, 0, len(domain.DocumentTypes))
	for _, t := range domain.DocumentTypes {
		types = append(types, string(t))
	}
	return "Você é um assistente de cartório de registro de imóveis. Identifique o tipo de um documento " +
		"pela sua estrutura e função jurídica, não apenas pela presença de palavras-chave. " +
		"Responda somente com um destes tipos: " + strings.Join(types, ", ") + "."
}()

func buildPrompt(filename string, declared domain.DocumentType, excerpt string) string {
	return fmt.Sprintf(
		"Arquivo: %s\nTipo sugerido pelo nome do arquivo: %s\n\nTrecho do documento:\n%s\n\n"+
			"Confirme o tipo sugerido ou informe o tipo correto.",
		filename, declared, excerpt,
	)
}
