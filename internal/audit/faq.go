package audit

const faqProtection = `🛡️ **Como o GoMech protege seus dados:**

1. **Criptografia em Trânsito e Repouso**
   • Todas as comunicações usam HTTPS/TLS
   • Dados sensíveis são criptografados com AES-256-GCM
   • Senhas nunca são armazenadas em texto puro (BCrypt)

2. **Controle de Acesso**
   • Autenticação JWT com tokens de curta duração
   • Controle baseado em funções (ADMIN, USER)
   • MFA (Autenticação Multi-Fator) disponível

3. **Auditoria Imutável**
   • Todos os eventos críticos são registrados
   • Hash SHA-256 para garantir integridade
   • Integração com Blockchain para rastreabilidade

4. **Isolamento Multi-Tenancy**
   • Dados de cada oficina completamente isolados
   • Queries automáticas com filtro de organização
   • Impossível acessar dados de outras empresas

5. **Backups Seguros**
   • Backups automáticos diários
   • Criptografados antes do armazenamento
   • Testados regularmente para restauração`

const faqLGPD = `🔒 **Conformidade LGPD no GoMech:**

**Direitos dos Titulares:**
• **Acesso** - Você pode consultar quais dados temos sobre você
• **Correção** - Dados incorretos podem ser atualizados a qualquer momento
• **Exclusão** - Direito ao esquecimento (com ressalvas legais)
• **Portabilidade** - Exportar seus dados em formato estruturado
• **Revogação** - Retirar consentimento de processamento

**Bases Legais:**
• **Execução de contrato** - Dados necessários para prestação do serviço
• **Legítimo interesse** - Segurança, prevenção de fraude, melhorias
• **Obrigação legal** - Retenção para fins fiscais e contábeis

**Retenção de Dados:**
• Dados operacionais: enquanto houver relação comercial
• Dados fiscais: 5 anos (legislação brasileira)
• Dados de auditoria: 3 anos
• Backups: 90 dias

**DPO (Encarregado):**
• Contato: dpo@gomech.com
• Horário: Seg-Sex, 9h-18h`

const faqBlockchain = `⛓️ **Blockchain no GoMech:**

O GoMech integra tecnologia blockchain para garantir **imutabilidade** e **rastreabilidade** dos eventos críticos.

**O que é registrado:**
• Criação/alteração de ordens de serviço
• Exclusão de dados sensíveis
• Alterações em valores financeiros
• Acessos administrativos
• Execução de backups

**Como funciona:**
1. Evento ocorre no sistema
2. Hash criptográfico (SHA-256) é gerado
3. Hash é publicado na blockchain
4. Referência blockchain é armazenada no banco

**Nota:** Apenas os hashes são registrados na blockchain, nunca dados pessoais ou sensíveis.`

const faqAccess = `👁️ **Monitoramento de Acessos:**

O GoMech registra automaticamente:
• **Logins/Logouts** - Quando e de onde você acessou
• **Alterações** - Quem modificou cada registro
• **Exclusões** - Histórico de dados removidos
• **Acessos Administrativos** - Ações de admins são auditadas
• **Exportações** - Downloads de relatórios e dados

**Como consultar seus acessos:**
1. Use este chat: "Quais acessos ocorreram na minha conta?"
2. Acesse: Menu → Segurança → Histórico de Acessos
3. Entre em contato: suporte@gomech.com

**Alertas Automáticos:**
🚨 Login de novo dispositivo
🚨 Acesso fora do horário habitual
🚨 Múltiplas tentativas de login falhas
🚨 Alteração de dados críticos`

const systemPrompt = `Você é o Agente de Segurança e Conformidade do GoMech.

🔐 **SUA MISSÃO:**
Garantir transparência, segurança e conformidade com LGPD.

📋 **SUAS CAPACIDADES:**
1. Explicar medidas de segurança do sistema
2. Responder dúvidas sobre LGPD e privacidade
3. Consultar logs de auditoria e acessos
4. Verificar status de solicitações LGPD
5. Orientar sobre direitos dos titulares de dados
6. Explicar uso de blockchain na auditoria

🎯 **DIRETRIZES:**
- Seja transparente e técnico quando necessário
- Use linguagem acessível para explicar conceitos complexos
- Sempre mencione as bases legais (LGPD)
- Ofereça links e contatos quando pertinente
- Nunca exponha dados sensíveis ou hashes completos

📊 **CONTEXTO ADICIONAL:**
%s

Responda de forma clara, profissional e empática.`

const replyFallback = `🔒 **Agente de Segurança e Conformidade**

Desculpe, tive um problema ao processar sua pergunta sobre segurança/auditoria.

**Posso te ajudar com:**
• Como o sistema protege seus dados
• Direitos LGPD (acesso, correção, exclusão)
• Consultar logs de auditoria
• Verificar acessos à sua conta
• Explicar uso de blockchain
• Políticas de segurança e privacidade

**Contatos:**
📧 Segurança: security@gomech.com
📧 DPO/LGPD: dpo@gomech.com

Tente reformular sua pergunta! 🛡️`
