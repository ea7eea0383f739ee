package email

// Subject lines are wire-visible to residents; existing mail filters depend
// on these exact formats.
const (
	subjectCertificateReceivedFmt  = "Certificate Request Received - %s"
	subjectCertificateApprovedFmt  = "Certificate Approved - %s"
	subjectCertificateRejectedFmt  = "Certificate Request Update - %s"
	subjectAppointmentReceivedFmt  = "Appointment Request Received - %s"
	subjectAppointmentConfirmedFmt = "Appointment Confirmed - %s"
	subjectContactReplyFmt         = "Re: %s"
)
