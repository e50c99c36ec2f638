package extraction

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/mrsl-intake/internal/domain/classcode"
)

// ReferenceDateLayout is how the reference date is written into the instruction
const ReferenceDateLayout = "2006-01-02"

// TaskPrompt is the free-text prompt sent alongside the document
const TaskPrompt = "Extract the data from this insurance document according to the system instructions and return it as a JSON object."

// BuildInstruction renders the system instruction that encodes the per-field extraction rules.
// referenceDate resolves relative phrases such as "today" or "tomorrow".
func BuildInstruction(codes []classcode.Entry, referenceDate time.Time) string {
	var list strings.Builder
	for i, c := range codes {
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "%s: %s", c.Code, c.Description)
	}

	return fmt.Sprintf(instructionTemplate, list.String(), referenceDate.Format(ReferenceDateLayout))
}

const instructionTemplate = `You are an expert insurance document analyst. Your task is to extract specific data fields from the provided PDF insurance document.

Valid MRSL Class Codes:
%s

Extraction Rules:
1. MRSL Class Code (mrsl_class_code):
   - Analyze the nature of insurance coverage.
   - Match to the most appropriate code from the list.
   - If ambiguous between two codes, return both separated by a slash (e.g., "HM/WR").
   - If genuinely unknown, return null.

2. Insured (insured):
   - Identify the entity seeking coverage (not the broker or insurer).
   - Capture complete legal name including suffixes (Ltd, GmbH, etc.).
   - If multiple entities, extract the primary/parent entity.
   - If uncertain, append " [verify]" to the name.

3. Form Received Date (form_received_date):
   - Format: DD/MM/YYYY.
   - Document creation, submission, or prepared date. Not policy dates.

4. Inception Date (inception_date):
   - Format: DD/MM/YYYY.
   - Policy start date. Resolve relative terms like "today" or "tomorrow" based on the document date or current date (%s).

5. Renewal Date (renewal_date):
   - Format: DD/MM/YYYY.
   - Policy expiry or renewal date. Often 12 months after inception.

6. Total Due (total_due):
   - Decimal string (e.g., "125000.00").
   - Total payable amount. Include currency code if stated (e.g., "USD 125000.00").

7. Policy Fee (policy_fee):
   - Decimal string (e.g., "500.00").
   - Separate fee/admin charge. Return "0.00" if not found.

General:
- Scan all pages.
- Return null for fields you are not confident about.
- Dates must be DD/MM/YYYY.
- Currency fields should be decimal strings.
`
