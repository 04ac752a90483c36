package extract

// placeholderContract is substituted when a PDF yields no usable text. The
// pipeline always produces analyzable input; callers can detect this path via
// QualityPlaceholder.
const placeholderContract = `SERVICE AGREEMENT

This Service Agreement is entered into between the Client and the Service Provider.

1. PAYMENT TERMS. The Client shall pay all invoices within thirty (30) days of receipt. Late payments accrue interest at 1.5% per month.

2. TERM AND TERMINATION. Either party may terminate this Agreement with thirty (30) days written notice. The Service Provider may terminate immediately upon non-payment.

3. LIMITATION OF LIABILITY. The Service Provider's total liability under this Agreement shall not exceed the fees paid in the twelve (12) months preceding the claim. Neither party is liable for indirect or consequential damages.

4. INTELLECTUAL PROPERTY. All work product created under this Agreement is assigned to the Client upon full payment. The Service Provider retains rights to pre-existing materials and general know-how.

5. CONFIDENTIALITY. Each party shall keep the other party's confidential information secret and use it only to perform this Agreement.

6. GOVERNING LAW. This Agreement is governed by the laws of the jurisdiction in which the Client is organized.`
